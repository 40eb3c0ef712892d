// Copyright (c) 2017, Andrey Nering <andrey.nering@gmail.com>
// See LICENSE for licensing information

//go:build unix

package interp

import (
	"context"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// installProcAttr puts the child in its own process group, so a signal
// sent to the shell's group (e.g. from the controlling terminal) does
// not also reach children directly, and so the shell can later target
// the group as a whole (spec.md §4.10).
func installProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// decodeStatus maps an external command's Wait error to the exit-status
// conventions of spec.md §7: a normal exit keeps its code, a signal
// death reports 128+n.
func decodeStatus(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *exec.ExitError
	if !asExitError(err, &exitErr) {
		return ExitGeneralFailure
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return ExitGeneralFailure
	}
	if ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ws.ExitStatus()
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}

// InstallShellSignals arranges for the shell process itself to ignore
// SIGQUIT at the prompt, matching the conventional interactive-shell
// disposition (spec.md §4.10, "SIGQUIT: ignored at the prompt"). SIGINT
// is deliberately left to the line editor (package readline), which
// already turns Ctrl-C into an error that clears the current input
// line; hooking os/signal for it as well would race the terminal's own
// raw-mode handling.
func InstallShellSignals() {
	signal.Ignore(syscall.SIGQUIT)
}

// resetChildSignalsForFork restores the default disposition for SIGQUIT,
// which the shell otherwise ignores, around the launch of an external
// command, so the child does not inherit the ignored SIGQUIT (spec.md
// §4.10, "external command: default disposition"). SIGINT is not touched
// here.
//
// Go's os/exec has no API to set a child's initial signal mask or
// disposition directly; the nearest approximation available without
// forking our own process is to flip the shell's own handlers off for
// the narrow window around Start, then restore them. This is a known
// simplification, not a faithful fork+exec.
func resetChildSignalsForFork() (restore func()) {
	signal.Reset(syscall.SIGQUIT)
	return func() { signal.Ignore(syscall.SIGQUIT) }
}

// interruptCommand sends SIGINT to the whole process group of cmd, used
// when the shell itself receives SIGINT while a foreground child is
// running (spec.md §4.10).
func interruptCommand(cmd *exec.Cmd) error {
	return unix.Kill(-cmd.Process.Pid, unix.SIGINT)
}

// forwardInterrupt relays the shell's own cancellation (SIGINT or
// SIGTERM caught by the top-level context, spec.md §4.10) to a running
// foreground child's process group, and stops watching once done is
// closed by the caller.
func (r *Runner) forwardInterrupt(ctx context.Context, cmd *exec.Cmd, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		interruptCommand(cmd)
	case <-done:
	}
}
