// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"gosh.dev/gosh/expand"
)

func newTestContext(t *testing.T) (*BuiltinContext, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := expand.NewStore()
	env.Set("HOME", t.TempDir())
	return &BuiltinContext{
		Env:    env,
		Dir:    t.TempDir(),
		Stdout: &stdout,
		Stderr: &stderr,
		Log:    newLogger(false),
	}, &stdout, &stderr
}

func TestBuiltinEcho(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)
	status := builtinEcho(ctx, []string{"foo", "bar"})
	qt.Assert(t, status, qt.Equals, ExitOK)
	qt.Assert(t, stdout.String(), qt.Equals, "foo bar\n")
}

func TestBuiltinEchoDashN(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)
	status := builtinEcho(ctx, []string{"-n", "hi"})
	qt.Assert(t, status, qt.Equals, ExitOK)
	qt.Assert(t, stdout.String(), qt.Equals, "hi")
}

func TestBuiltinPwd(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)
	builtinPwd(ctx, nil)
	qt.Assert(t, stdout.String(), qt.Equals, ctx.Dir+"\n")
}

func TestBuiltinCdAbsolute(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	target := t.TempDir()
	status := builtinCd(ctx, []string{target})
	qt.Assert(t, status, qt.Equals, ExitOK)
	qt.Assert(t, ctx.Dir, qt.Equals, target)
	pwd, _ := ctx.Env.Get("PWD")
	qt.Assert(t, pwd, qt.Equals, target)
}

func TestBuiltinCdDash(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)
	first := ctx.Dir
	second := t.TempDir()

	qt.Assert(t, builtinCd(ctx, []string{second}), qt.Equals, ExitOK)
	qt.Assert(t, builtinCd(ctx, []string{"-"}), qt.Equals, ExitOK)
	qt.Assert(t, ctx.Dir, qt.Equals, first)
	qt.Assert(t, stdout.String(), qt.Equals, first+"\n")
}

func TestBuiltinCdCleansDotDot(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	start := ctx.Dir
	status := builtinCd(ctx, []string{filepath.Join(start, "..")})
	qt.Assert(t, status, qt.Equals, ExitOK)
	qt.Assert(t, ctx.Dir, qt.Equals, filepath.Dir(start))
}

func TestBuiltinCdNoSuchDir(t *testing.T) {
	ctx, _, stderr := newTestContext(t)
	status := builtinCd(ctx, []string{filepath.Join(ctx.Dir, "nope")})
	qt.Assert(t, status, qt.Equals, ExitGeneralFailure)
	qt.Assert(t, stderr.String(), qt.Not(qt.Equals), "")
}

func TestBuiltinExit(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	status := builtinExit(ctx, []string{"3"})
	qt.Assert(t, status, qt.Equals, 3)
	qt.Assert(t, ctx.ExitRequested, qt.IsTrue)
	qt.Assert(t, ctx.ExitCode, qt.Equals, 3)
}

func TestBuiltinExitBadArg(t *testing.T) {
	ctx, _, stderr := newTestContext(t)
	status := builtinExit(ctx, []string{"nope"})
	qt.Assert(t, status, qt.Equals, ExitBuiltinUsage)
	qt.Assert(t, stderr.String(), qt.Not(qt.Equals), "")
}

func TestBuiltinExportAssignAndList(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)
	qt.Assert(t, builtinExport(ctx, []string{"FOO=bar"}), qt.Equals, ExitOK)
	v, ok := ctx.Env.Get("FOO")
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, v, qt.Equals, "bar")

	stdout.Reset()
	builtinExport(ctx, nil)
	qt.Assert(t, stdout.String(), qt.Contains, "export FOO=bar\n")
}

func TestBuiltinExportBareNameKeepsExistingValue(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	ctx.Env.Set("FOO", "already-set")
	builtinExport(ctx, []string{"FOO"})
	v, _ := ctx.Env.Get("FOO")
	qt.Assert(t, v, qt.Equals, "already-set")
}

func TestBuiltinUnsetContinuesPastBadArgs(t *testing.T) {
	ctx, _, stderr := newTestContext(t)
	ctx.Env.Set("A", "1")
	ctx.Env.Set("B", "2")
	status := builtinUnset(ctx, []string{"1bad", "A", "B"})
	qt.Assert(t, status, qt.Equals, ExitGeneralFailure)
	qt.Assert(t, stderr.String(), qt.Not(qt.Equals), "")
	_, aOK := ctx.Env.Get("A")
	_, bOK := ctx.Env.Get("B")
	qt.Assert(t, aOK, qt.IsFalse)
	qt.Assert(t, bOK, qt.IsFalse)
}

func TestBuiltinEnvOrder(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)
	ctx.Env.Set("ZEBRA", "1")
	ctx.Env.Set("APPLE", "2")
	builtinEnv(ctx, nil)
	qt.Assert(t, stdout.String(), qt.Equals, "HOME="+mustGet(ctx.Env, "HOME")+"\nZEBRA=1\nAPPLE=2\n")
}

func mustGet(s *expand.Store, name string) string {
	v, _ := s.Get(name)
	return v
}
