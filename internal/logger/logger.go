// Package logger provides component-scoped structured logging on top of logrus.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Component tags a log entry with the subsystem that produced it.
type Component string

const (
	ComponentResolver  Component = "resolver"
	ComponentSession   Component = "session"
	ComponentInnerTube Component = "innertube"
	ComponentCipher    Component = "cipher"
	ComponentFormat    Component = "format"
)

var root = newRoot()

func newRoot() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Setup configures the shared logger. An unparsable level falls back to info.
func Setup(level string, jsonFormat bool, out io.Writer) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	root.SetLevel(parsed)
	if jsonFormat {
		root.SetFormatter(&logrus.JSONFormatter{})
	} else {
		root.SetFormatter(&logrus.TextFormatter{})
	}
	if out != nil {
		root.SetOutput(out)
	}
}

// For returns an entry bound to the given component.
func For(c Component) *logrus.Entry {
	return root.WithField("component", string(c))
}
