// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log prints run progress for humans and mirrors it into zerolog.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎯 FileKind is the kind of file operation being reported
type FileKind string

const (
	KindCopy FileKind = "copy"
	KindZip  FileKind = "zip"
)

// 🎯 FileOperation represents a file operation for logging
type FileOperation struct {
	Kind        FileKind
	Source      string // Path as written in the manifest, or the staged file
	Destination string // Staging-relative path, or the archive entry name
}

// 📦 Phase represents one step of the run
type Phase struct {
	Name   string // e.g. "staging", "archiving"
	Target string // Directory or archive the phase writes to
}

// 🎯 Logger handles console output for a run. A quiet logger still writes
// to zerolog but prints nothing.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	quiet   bool
	mu      sync.Mutex
	files   int
}

// 🏭 New creates a new logger; zerolog output goes to the context logger
func New(ctx context.Context, console io.Writer, quiet bool) *Logger {
	return &Logger{
		zlog:    *zerolog.Ctx(ctx),
		console: console,
		quiet:   quiet,
	}
}

// 🔇 Discard returns a logger that prints nothing
func Discard() *Logger {
	return &Logger{zlog: zerolog.Nop(), console: io.Discard, quiet: true}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a discarding logger
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return Discard()
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.console, format, args...)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	switch op.Kind {
	case KindZip:
		return fmt.Sprintf("%s %s",
			color.New(color.FgMagenta).Sprint("Added to zip:"),
			op.Destination)
	default:
		return fmt.Sprintf("%s %s %s %s",
			color.New(color.FgGreen).Sprint("Copied:"),
			op.Source,
			color.New(color.Faint).Sprint("->"),
			op.Destination)
	}
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files++
	l.printf("%s\n", l.formatFileOperation(op))

	l.zlog.Info().
		Str("kind", string(op.Kind)).
		Str("source", op.Source).
		Str("destination", op.Destination).
		Msg("file operation")
}

// 📝 StartPhase prints the header of a phase
func (l *Logger) StartPhase(ctx context.Context, p Phase) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files = 0
	l.printf("[%s %s]\n", p.Name, color.New(color.FgCyan).Sprint(p.Target))

	l.zlog.Info().
		Str("phase", p.Name).
		Str("target", p.Target).
		Msg("starting phase")
}

// 📝 EndPhase logs how many files the phase touched
func (l *Logger) EndPhase(ctx context.Context, p Phase) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zlog.Info().
		Str("phase", p.Name).
		Int("files", l.files).
		Msg("phase complete")
	l.files = 0
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf("\n")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("packrc")
	l.printf("\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf("%s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf("%s %s\n", color.New(color.FgYellow).Sprint("Warning:"), msg)
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf("%s %s\n", color.New(color.FgRed).Sprint("Error:"), msg)
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf("%s\n", msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
