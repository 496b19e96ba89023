// Package logger is the process-wide log sink. Lines go to a rotating file in
// the config directory so they never mix with command output or the TUI.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/guardian/internal/constants"
)

var (
	// Logger is nil until Init or a test assigns one
	Logger *log.Logger

	file *lumberjack.Logger
)

type Config struct {
	Debug     bool
	ConfigDir string
	// Quiet keeps stderr silent even in debug mode. The TUI sets it so log
	// lines don't tear the alternate screen.
	Quiet bool
}

// Path is the active log file
func (c Config) Path() string {
	return filepath.Join(c.ConfigDir, "logs", constants.AppName+".log")
}

// Init replaces the global logger. Warnings and errors are always written;
// debug lines only with cfg.Debug.
func Init(cfg Config) error {
	path := cfg.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	if err := Close(); err != nil {
		return err
	}

	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}

	var w io.Writer = file
	if cfg.Debug && !cfg.Quiet {
		w = io.MultiWriter(os.Stderr, file)
	}
	Logger = New(w, cfg.Debug)
	return nil
}

// New builds a logfmt logger on w
func New(w io.Writer, debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    debug,
		Formatter:       log.LogfmtFormatter,
	})
}

// Close releases the log file opened by Init
func Close() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
