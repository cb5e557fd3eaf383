package logsvc

import (
	"io"
	"log"
	"os"

	"github.com/trezcool/masomo-portal/core"
)

// leveledLogger drops Debug messages unless verbose; used when rollbar is off.
type leveledLogger struct {
	std     *log.Logger
	verbose bool
}

var _ core.Logger = (*leveledLogger)(nil)

func NewStdLogger(w io.Writer, prefix string, verbose bool) core.Logger {
	return &leveledLogger{
		std:     log.New(w, prefix, log.LstdFlags|log.Lmicroseconds),
		verbose: verbose,
	}
}

// NewDiscardLogger returns a Logger that writes nothing. Handy in tests.
func NewDiscardLogger() core.Logger {
	return NewStdLogger(io.Discard, "", false)
}

func (l *leveledLogger) print(level, msg string, args []interface{}) {
	l.std.Println(level + " " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *leveledLogger) Debug(msg string, args ...interface{}) {
	if l.verbose {
		l.print("DEBUG", msg, args)
	}
}

func (l *leveledLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l *leveledLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l *leveledLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

func (l *leveledLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	os.Exit(1)
}
