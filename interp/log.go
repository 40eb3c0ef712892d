// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import "github.com/sirupsen/logrus"

// logger wraps a logrus.Logger so call sites can pass loose key/value
// pairs without importing logrus directly (spec.md §9 design note:
// "the source's ad hoc debug fprintf becomes structured logging").
type logger struct {
	l *logrus.Logger
}

// newLogger builds a logger writing to stderr at Debug level when
// verbose is set, Warn level otherwise (spec.md §6, -v flag).
func newLogger(verbose bool) *logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return &logger{l: l}
}

func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		f[key] = kv[i+1]
	}
	return f
}

func (lg *logger) Debug(msg string, kv ...interface{}) {
	lg.l.WithFields(fields(kv)).Debug(msg)
}

func (lg *logger) Warn(msg string, kv ...interface{}) {
	lg.l.WithFields(fields(kv)).Warn(msg)
}

func (lg *logger) Error(msg string, kv ...interface{}) {
	lg.l.WithFields(fields(kv)).Error(msg)
}
