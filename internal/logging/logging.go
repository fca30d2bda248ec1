// Package logging builds the component loggers used across daylist.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger with the given component prefix.
//
// When path is empty the logger writes to stderr. Otherwise it writes to a
// size-rotated file so a long-running inbox or dashboard daemon cannot grow
// an unbounded log.
func New(component, path string) *log.Logger {
	var w io.Writer = os.Stderr
	if path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return log.New(w, "["+component+"] ", log.LstdFlags)
}
