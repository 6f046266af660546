// Package logging provides the leveled, colored logging used across the
// repository, generalizing the original db_tutorial clone's log.h/log.c
// (INFO/DEBUG/WARN/ERROR/FATAL, one color per level) into a structured
// logrus-based logger.
package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// levelColors mirrors the original log.h's per-level ANSI colors.
var levelColors = map[logrus.Level]*color.Color{
	logrus.DebugLevel: color.New(color.FgBlue),
	logrus.InfoLevel:  color.New(color.FgGreen),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed),
	logrus.FatalLevel: color.New(color.FgHiRed, color.Bold),
}

// colorFormatter colors the level name, then defers to a plain text
// layout for the rest of the line.
type colorFormatter struct {
	disableColor bool
}

func (f *colorFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := e.Level.String()
	if !f.disableColor {
		if c, ok := levelColors[e.Level]; ok {
			level = c.Sprint(level)
		}
	}
	line := e.Time.Format("15:04:05.000") + " [" + level + "] " + e.Message
	for k, v := range e.Data {
		line += fmt.Sprintf(" %s=%v", k, v)
	}
	line += "\n"
	return []byte(line), nil
}

// root is the base logger every package-level logger derives from.
var root = logrus.New()

// Tree logs B+ tree and pager internals, mirroring the original's
// dblog()/LogLevel_DEBUG call sites in db.c.
var Tree = logrus.NewEntry(root).WithField("component", "tree")

// Repl logs command-loop activity, mirroring the original's replog().
var Repl = logrus.NewEntry(root).WithField("component", "repl")

func init() {
	root.SetOutput(os.Stderr)
	root.SetFormatter(&colorFormatter{disableColor: !isTerminal()})
	root.SetLevel(logrus.InfoLevel)
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd())
}

// SetLevel adjusts the root logger's level, e.g. from config.Settings.LogLevel.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	root.SetLevel(lvl)
	return nil
}

// SetJSONFormat switches to structured JSON output instead of the
// colorized text format, for non-interactive/log-aggregated runs.
func SetJSONFormat() {
	root.SetFormatter(&logrus.JSONFormatter{})
}
