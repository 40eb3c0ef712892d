// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package interp implements the executor (C9), the signal coordinator
// (C10) and the builtin table (spec.md §4.9, §4.10, §6) on top of the
// syntax and expand packages.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"gosh.dev/gosh/expand"
	"gosh.dev/gosh/fileutil"
	"gosh.dev/gosh/syntax"
	"gosh.dev/gosh/token"
)

// Exit code conventions (spec.md §7).
const (
	ExitOK             = 0
	ExitGeneralFailure = 1
	ExitBuiltinUsage   = 2
	ExitNotExecutable  = 126
	ExitNotFound       = 127
	ExitSyntaxError    = 258
)

// ErrExit is returned up through Execute to signal that the `exit`
// builtin was invoked in foreground context and the whole shell session
// must terminate with Code (spec.md §6, exit).
type ErrExit struct{ Code int }

func (e *ErrExit) Error() string { return fmt.Sprintf("exit requested with status %d", e.Code) }

// Runner holds the state one interactive shell session threads through
// every pipeline it executes (spec.md §3, "Session state").
type Runner struct {
	Env        *expand.Store
	Dir        string
	LastStatus int

	ShellName string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer

	// HeredocLine supplies one more raw line of here-doc body text; it is
	// set by cmd/gosh to read from the same source as the rest of the
	// session's input (spec.md §4.7).
	HeredocLine func() (line string, ok bool, err error)

	Log *logger
}

// New builds a Runner seeded from the host process's environment and
// working directory (spec.md §3).
func New(shellName string, stdin io.Reader, stdout, stderr io.Writer, verbose bool) (*Runner, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Runner{
		Env:       expand.NewStoreFromOS(),
		Dir:       dir,
		ShellName: shellName,
		Stdin:     stdin,
		Stdout:    stdout,
		Stderr:    stderr,
		Log:       newLogger(verbose),
	}, nil
}

// ExecuteLine lexes, completes, validates, parses and runs one logical
// statement, returning the process-style exit status that should be
// recorded as $? (spec.md §2, full pipeline C2-C9). read supplies
// continuation lines for an unterminated quote or trailing pipe.
func (r *Runner) ExecuteLine(ctx context.Context, firstLine string, read syntax.Prompter) (int, error) {
	stmt, err := syntax.ReadStatement(r.ShellName, firstLine, read)
	if err != nil {
		return 0, err
	}
	r.Log.Debug("lexed statement", "tokens", len(stmt.Tokens))

	pipeline, err := syntax.Parse(stmt.Tokens, r.ShellName)
	if err != nil {
		var se *syntax.SyntaxError
		if errors.As(err, &se) {
			fmt.Fprintln(r.Stderr, se.Error())
			r.LastStatus = ExitSyntaxError
			return r.LastStatus, nil
		}
		return 0, err
	}
	if pipeline == nil {
		// Empty line: a no-op that doesn't disturb $? (spec.md §8).
		return r.LastStatus, nil
	}

	status, err := r.execute(ctx, pipeline)
	if err != nil {
		var ee *ErrExit
		if errors.As(err, &ee) {
			return ee.Code, err
		}
		return 0, err
	}
	r.LastStatus = status
	return status, nil
}

// Execute runs a single already-parsed pipeline, e.g. from a script file
// or a -c argument (spec.md §6).
func (r *Runner) Execute(ctx context.Context, p *syntax.Pipeline) (int, error) {
	status, err := r.execute(ctx, p)
	if err != nil {
		var ee *ErrExit
		if errors.As(err, &ee) {
			return ee.Code, err
		}
		return 0, err
	}
	r.LastStatus = status
	return status, nil
}

func (r *Runner) execute(ctx context.Context, p *syntax.Pipeline) (int, error) {
	if len(p.Stages) == 1 {
		return r.runSingleStage(ctx, p.Stages[0])
	}
	return r.runMultiStage(ctx, p.Stages)
}

// runSingleStage runs a lone command in the foreground: builtins mutate
// r.Env/r.Dir directly, external commands inherit the real stdio
// (spec.md §5, "Foreground single command").
func (r *Runner) runSingleStage(ctx context.Context, cmd *syntax.Command) (int, error) {
	name := expand.ExpandWord(cmd.Name(), r.Env, r.LastStatus)
	args := expandArgs(cmd, r.Env, r.LastStatus)

	bctx := &BuiltinContext{
		Env:    r.Env,
		Dir:    r.Dir,
		Stdin:  r.Stdin,
		Stdout: r.Stdout,
		Stderr: r.Stderr,
		Log:    r.Log,
	}
	streams, closeStreams, err := r.prepareStreams(cmd, bctx.Stdin, bctx.Stdout, bctx.Stderr, r.Env, r.LastStatus)
	if err != nil {
		fmt.Fprintln(r.Stderr, err)
		return ExitGeneralFailure, nil
	}
	defer closeStreams()
	bctx.Stdin, bctx.Stdout, bctx.Stderr = streams.stdin, streams.stdout, streams.stderr

	if fn, ok := builtinTable[name]; ok {
		status := fn(bctx, args)
		r.Dir = bctx.Dir
		if bctx.ExitRequested {
			return bctx.ExitCode, &ErrExit{Code: bctx.ExitCode}
		}
		return status, nil
	}

	return r.runExternal(ctx, name, args, streams.stdin, streams.stdout, streams.stderr)
}

// runMultiStage wires every stage's stdout to the next stage's stdin
// with io.Pipe, runs all stages concurrently via an errgroup as isolated
// forked children (spec.md §4.9 step 2), and reports the last stage's
// exit status (spec.md §5, "pipeline's exit status is the rightmost
// stage's").
func (r *Runner) runMultiStage(ctx context.Context, stages []*syntax.Command) (int, error) {
	n := len(stages)
	readers := make([]io.Reader, n)
	writers := make([]io.Writer, n)

	readers[0] = r.Stdin
	writers[n-1] = r.Stdout
	for i := 0; i < n-1; i++ {
		pr, pw := io.Pipe()
		writers[i] = pw
		readers[i+1] = pr
	}

	statuses := make([]int, n)
	g, gctx := errgroup.WithContext(ctx)
	for i, cmd := range stages {
		i, cmd := i, cmd
		g.Go(func() error {
			status, err := r.runStage(gctx, cmd, readers[i], writers[i], r.Stderr)
			statuses[i] = status
			if pw, ok := writers[i].(*io.PipeWriter); ok {
				pw.Close()
			}
			if pr, ok := readers[i].(*io.PipeReader); ok {
				pr.Close()
			}
			return err
		})
	}
	// No stage can produce an *ErrExit: every stage is a forked child, so
	// exit only ever ends its own virtual child (see runStage).
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return statuses[n-1], nil
}

// runStage runs one stage of a multi-stage pipeline. Every stage there
// is a forked child (spec.md §4.9 step 2), including the last one, so a
// builtin running here always gets a cloned environment and directory:
// its mutations never escape back to the session, and exit only ends
// this stage's virtual child rather than the whole session (spec.md §5,
// "Builtin inside a pipeline"). The single-stage pipeline, which runs
// in-process, is handled separately by runSingleStage.
func (r *Runner) runStage(ctx context.Context, cmd *syntax.Command, stdin io.Reader, stdout io.Writer, stderr io.Writer) (int, error) {
	env := r.Env.Clone()
	dir := r.Dir
	lastStatus := r.LastStatus

	name := expand.ExpandWord(cmd.Name(), env, lastStatus)
	args := expandArgs(cmd, env, lastStatus)

	bctx := &BuiltinContext{Env: env, Dir: dir, Stdin: stdin, Stdout: stdout, Stderr: stderr, Log: r.Log}
	streams, closeStreams, err := r.prepareStreams(cmd, stdin, stdout, stderr, env, lastStatus)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitGeneralFailure, nil
	}
	defer closeStreams()
	bctx.Stdin, bctx.Stdout, bctx.Stderr = streams.stdin, streams.stdout, streams.stderr

	if fn, ok := builtinTable[name]; ok {
		status := fn(bctx, args)
		if bctx.ExitRequested {
			// exit inside a pipeline stage only ends that stage's
			// virtual forked child, never the session itself
			// (spec.md §4.9 step 2, §5).
			return bctx.ExitCode, nil
		}
		return status, nil
	}

	return r.runExternal(ctx, name, args, streams.stdin, streams.stdout, streams.stderr)
}

func (r *Runner) runExternal(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	path, err := fileutil.LookPath(r.Dir, r.Env, name)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s: %v\n", r.ShellName, name, err)
		if errors.Is(err, fileutil.ErrNotExecutable) {
			return ExitNotExecutable, nil
		}
		return ExitNotFound, nil
	}

	c := exec.Command(path, args...)
	c.Dir = r.Dir
	c.Env = envSlice(r.Env)
	c.Stdin, c.Stdout, c.Stderr = stdin, stdout, stderr
	installProcAttr(c)

	restore := resetChildSignalsForFork()
	r.Log.Debug("exec", "path", path, "args", args)
	startErr := c.Start()
	restore()
	if startErr != nil {
		fmt.Fprintf(stderr, "%s: %s: %v\n", r.ShellName, name, startErr)
		return ExitGeneralFailure, nil
	}

	done := make(chan struct{})
	go r.forwardInterrupt(ctx, c, done)

	waitErr := c.Wait()
	close(done)
	return decodeStatus(waitErr), nil
}

func expandArgs(cmd *syntax.Command, env *expand.Store, lastStatus int) []string {
	args := make([]string, 0, len(cmd.Args()))
	for _, w := range cmd.Args() {
		args = append(args, expand.ExpandWord(w, env, lastStatus))
	}
	return args
}

func envSlice(s *expand.Store) []string {
	entries := s.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name + "=" + e.Value
	}
	return out
}

type stageStreams struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

// prepareStreams applies a command's redirections on top of its
// pipeline-assigned streams, in source order, so a later redirection
// overrides an earlier one targeting the same direction (spec.md §4.9).
func (r *Runner) prepareStreams(cmd *syntax.Command, stdin io.Reader, stdout, stderr io.Writer, env *expand.Store, lastStatus int) (stageStreams, func(), error) {
	s := stageStreams{stdin: stdin, stdout: stdout, stderr: stderr}
	var toClose []io.Closer

	closeAll := func() {
		for _, c := range toClose {
			c.Close()
		}
	}

	for _, redir := range cmd.Redirs {
		switch redir.Op {
		case token.RedirIn:
			target := expand.ExpandWord(redir.Target, env, lastStatus)
			f, err := os.Open(r.resolvePath(target))
			if err != nil {
				closeAll()
				return s, func() {}, err
			}
			toClose = append(toClose, f)
			s.stdin = f
		case token.RedirOut:
			target := expand.ExpandWord(redir.Target, env, lastStatus)
			f, err := os.Create(r.resolvePath(target))
			if err != nil {
				closeAll()
				return s, func() {}, err
			}
			toClose = append(toClose, f)
			s.stdout = f
		case token.RedirAppend:
			target := expand.ExpandWord(redir.Target, env, lastStatus)
			f, err := os.OpenFile(r.resolvePath(target), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				closeAll()
				return s, func() {}, err
			}
			toClose = append(toClose, f)
			s.stdout = f
		case token.HereDoc:
			body, err := r.readHeredoc(redir.Target.RawText(), redir.ExpandBody, env, lastStatus)
			if err != nil {
				closeAll()
				return s, func() {}, err
			}
			s.stdin = body
		}
	}

	return s, closeAll, nil
}

func (r *Runner) resolvePath(name string) string {
	if len(name) > 0 && name[0] == '/' {
		return name
	}
	return r.Dir + string(os.PathSeparator) + name
}

