// Package logging builds the *log.Logger instances handed to the other
// packages through their Config structs.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for file output.
const (
	MaxSizeMB  = 10
	MaxBackups = 3
	MaxAgeDays = 28
)

// Options selects where log output goes.
type Options struct {
	// File, when set, receives the log through a size-rotated writer.
	File string

	// Quiet discards output when no File is set. Interactive front ends use
	// it so log lines never land on the screen.
	Quiet bool
}

// Sink is the destination shared by every logger of one process.
type Sink struct {
	w      io.Writer
	closer io.Closer
}

// Open creates the sink described by opts.
func Open(opts Options) *Sink {
	switch {
	case opts.File != "":
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
			Compress:   true,
		}
		return &Sink{w: lj, closer: lj}
	case opts.Quiet:
		return &Sink{w: io.Discard}
	default:
		return &Sink{w: os.Stderr}
	}
}

// Logger returns a logger writing to the sink with the given component
// prefix, e.g. "web" -> "[web] ".
func (s *Sink) Logger(component string) *log.Logger {
	prefix := ""
	if component != "" {
		prefix = "[" + component + "] "
	}
	return log.New(s.w, prefix, log.LstdFlags)
}

// Writer exposes the raw destination.
func (s *Sink) Writer() io.Writer {
	return s.w
}

// Close flushes and closes file output. It is a no-op otherwise.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
