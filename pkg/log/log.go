// Package log provides the small logging facade used throughout this
// module for operational messages (as opposed to the simulation
// diagnostics recorded in a Logbook, which are data, not logs).
package log

import "github.com/sirupsen/logrus"

type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// logger is a Logger backed by logrus, passed explicitly into internal/sim
// and cmd/gbsdiff rather than reached for as a package-level global.
type logger struct {
	entry *logrus.Logger
}

// New returns a Logger that writes structured, leveled output via logrus.
func New() Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return &logger{entry: l}
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}
