// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// gosh is a small interactive POSIX-subset shell.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gosh.dev/gosh/interp"
	"gosh.dev/gosh/syntax"
)

var (
	command        string
	historyFile    string
	historyMax     int
	historyFileMax int
	verbose        bool
)

func main() {
	os.Exit(main1())
}

// main1 is separated out from main so that the test binary can re-exec
// itself as the gosh command under testscript (spec.md §6, grounded in
// the teacher's cmd/shfmt main1/TestMain split).
func main1() int {
	// Reset package-level flag state between re-exec invocations inside
	// the same test binary.
	command, historyFile, historyMax, historyFileMax, verbose = "", defaultHistoryFile(), 1000, 2000, false

	root := &cobra.Command{
		Use:           "gosh [script]",
		Short:         "gosh is a small interactive POSIX-subset shell",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE:          run,
	}
	root.Flags().StringVarP(&command, "c", "c", "", "command to execute")
	root.Flags().StringVar(&historyFile, "history-file", historyFile, "path to the history file")
	root.Flags().IntVar(&historyMax, "history-max", historyMax, "in-session history size")
	root.Flags().IntVar(&historyFileMax, "history-file-max", historyFileMax, "on-disk history size")
	root.Flags().BoolVarP(&verbose, "v", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		var es *interp.ErrExit
		if errors.As(err, &es) {
			return es.Code
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gosh_history")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bumpShellLevel()

	r, err := interp.New("gosh", os.Stdin, os.Stdout, os.Stderr, verbose)
	if err != nil {
		return err
	}
	interp.InstallShellSignals()

	switch {
	case command != "":
		return runScript(ctx, r, strings.NewReader(command))
	case len(args) == 1:
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return runScript(ctx, r, f)
	case term.IsTerminal(int(os.Stdin.Fd())):
		return runInteractive(ctx, r)
	default:
		return runScript(ctx, r, os.Stdin)
	}
}

// bumpShellLevel increments SHLVL in the process environment, clamped
// to [1, 1000] as the original source's shell_level.c does (spec.md §5,
// Supplemented features), so children started by this session see a
// correctly incremented level in turn.
func bumpShellLevel() {
	level := 0
	if v, ok := os.LookupEnv("SHLVL"); ok {
		level, _ = strconv.Atoi(v)
	}
	level++
	if level < 1 {
		level = 1
	}
	if level > 1000 {
		level = 1000
	}
	os.Setenv("SHLVL", strconv.Itoa(level))
}

// runScript feeds r one statement at a time from src, with no
// continuation prompting: a script's unclosed quote or trailing pipe is
// a hard error (spec.md §4.3, "batch mode"). When src is exhausted, a
// non-zero last exit status is returned as an *interp.ErrExit so that it
// becomes the process's exit code.
func runScript(ctx context.Context, r *interp.Runner, src io.Reader) error {
	sc := bufio.NewScanner(src)
	noMore := func(string) (string, bool, error) { return "", false, nil }
	r.HeredocLine = func() (string, bool, error) {
		if !sc.Scan() {
			return "", false, sc.Err()
		}
		return sc.Text(), true, nil
	}

	for sc.Scan() {
		line := sc.Text()
		_, err := r.ExecuteLine(ctx, line, noMore)
		var ee *interp.ErrExit
		if errors.As(err, &ee) {
			return ee
		}
		if err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if r.LastStatus != interp.ExitOK {
		return &interp.ErrExit{Code: r.LastStatus}
	}
	return nil
}

// runInteractive drives the prompt loop: chzyer/readline supplies line
// editing, history recall and Ctrl-C-clears-the-line behavior
// (spec.md §4.3, §4.10), while our own History type owns load/save so
// its trimming rules match spec.md §6 exactly.
func runInteractive(ctx context.Context, r *interp.Runner) error {
	hist := interp.NewHistory(historyFile, historyMax, historyFileMax)
	if err := hist.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "gosh: history: %v\n", err)
	}

	prompt := r.ShellName + "$> "
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "", // History is owned by interp.History, not readline.
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	for _, line := range hist.Entries() {
		rl.SaveHistory(line)
	}

	read := func(prompt string) (string, bool, error) {
		rl.SetPrompt(prompt)
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return "", false, nil
		}
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return line, true, nil
	}
	r.HeredocLine = func() (string, bool, error) { return read("> ") }

	for {
		line, ok, err := read(prompt)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		hist.Add(line)
		rl.SaveHistory(line)

		_, err = r.ExecuteLine(ctx, line, read)
		var ee *interp.ErrExit
		if errors.As(err, &ee) {
			if serr := hist.Save(); serr != nil {
				fmt.Fprintf(os.Stderr, "gosh: history: %v\n", serr)
			}
			return ee
		}
		if err != nil {
			if errors.Is(err, syntax.ErrInterrupted) {
				continue
			}
			fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
			continue
		}
	}

	return hist.Save()
}
