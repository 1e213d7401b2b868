// Package log prints leveled, colored messages and spew dumps.
package log

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// sink keeps the stored type fixed whatever writer is installed.
type sink struct {
	w io.Writer
}

var out atomic.Pointer[sink]

func init() {
	out.Store(&sink{w: os.Stdout})
}

// SetOutput redirects all log output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	out.Store(&sink{w: w})
}

func emit(tag func(a ...interface{}) string, level, format string, a ...interface{}) {
	w := out.Load().w
	fmt.Fprintf(w, "%s ", tag(level))
	fmt.Fprintf(w, format, a...)
	fmt.Fprintln(w)
}

// Info log information
func Info(format string, a ...interface{}) {
	emit(color.New(color.FgWhite, color.BgGreen).SprintFunc(), "[INFO] ", format, a...)
}

// Warn log warning
func Warn(format string, a ...interface{}) {
	emit(color.New(color.FgWhite, color.BgYellow).SprintFunc(), "[WARN] ", format, a...)
}

// Error log error
func Error(format string, a ...interface{}) {
	emit(color.New(color.FgRed).SprintFunc(), "[Error]", format, a...)
}

// Debug logs a debug message. Callers decide whether debugging is on.
func Debug(format string, a ...interface{}) {
	emit(color.New(color.FgCyan).SprintFunc(), "[DEBUG]", format, a...)
}

// Dump returns a spew dump of a.
func Dump(a ...interface{}) string {
	return spew.Sdump(a...)
}
