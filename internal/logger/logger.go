package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/mellow/internal/constants"
)

// Logger is the process-wide logger. Nil until Init succeeds.
var Logger *log.Logger

type Config struct {
	Debug bool
	// Console mirrors log lines to stderr. serve turns this on so the
	// gateway lifecycle is visible without tailing the file.
	Console bool
	LogDir  string
}

// Init opens the rotating log file under cfg.LogDir and installs the global
// logger.
func Init(cfg Config) error {
	dir := cfg.LogDir
	if dir == "" {
		dir = constants.DefaultLogDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, constants.LogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	var w io.Writer = file
	if cfg.Debug || cfg.Console {
		w = io.MultiWriter(os.Stderr, file)
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return nil
}

// With returns a child logger carrying keyvals, or nil before Init.
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return nil
	}
	return Logger.With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
