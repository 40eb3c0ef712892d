// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package fileutil implements the path resolver (C8, spec.md §4.8): it
// turns a command name into an absolute executable path, either by
// treating a name containing a slash as a direct path, or by walking
// PATH.
package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gosh.dev/gosh/expand"
)

// ErrNotFound is returned when name cannot be resolved against PATH (or,
// for a slash-containing name, does not exist) (spec.md §4.8, §7: exit 127).
var ErrNotFound = errors.New("command not found")

// ErrNotExecutable is returned when a candidate path exists but is not
// executable by the current user (spec.md §4.8, §7: exit 126).
var ErrNotExecutable = errors.New("permission denied")

// LookPath resolves name to an absolute path. A name containing a slash
// is resolved relative to cwd without consulting PATH, matching POSIX
// and spec.md §4.8, step 1. Otherwise every directory in env's PATH is
// tried in order, first executable match wins; if no directory holds an
// executable match but one holds a non-executable file of that name,
// ErrNotExecutable is returned instead of ErrNotFound.
func LookPath(cwd string, env *expand.Store, name string) (string, error) {
	if strings.ContainsRune(name, '/') {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		return checkExecutable(path)
	}

	pathVal, _ := env.Get("PATH")
	notExec := false
	for _, dir := range filepath.SplitList(pathVal) {
		if dir == "" {
			dir = "."
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
		candidate := filepath.Join(dir, name)
		path, err := checkExecutable(candidate)
		if err == nil {
			return path, nil
		}
		if errors.Is(err, ErrNotExecutable) {
			notExec = true
		}
	}
	if notExec {
		return "", ErrNotExecutable
	}
	return "", ErrNotFound
}

// checkExecutable reports whether path names a regular, executable file.
func checkExecutable(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", ErrNotFound
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	if info.Mode()&0o111 == 0 {
		return "", ErrNotExecutable
	}
	return path, nil
}
