// Package common provides shared constants, types, and utilities
// used across the Maestral GTK application.
package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config or flag value to a LogLevel.
// Unknown values fall back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// AppLogger writes levelled, caller-annotated lines to stderr and,
// optionally, to a size-limited log file.
type AppLogger struct {
	mu          sync.Mutex
	level       LogLevel
	out         io.Writer
	file        *rotatingFile
	logDir      string
	maxFileSize int64
	maxBackups  int
}

var (
	_ Logger = (*AppLogger)(nil)
	_ Logger = (*ComponentLogger)(nil)
)

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level       LogLevel
	EnableFile  bool
	Dir         string // defaults to GetLogDir()
	MaxFileSize int64  // in bytes, default 5MB
	MaxBackups  int    // numbered backups kept, default 5
}

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

const (
	defaultMaxFileSize = 5 * 1024 * 1024 // 5MB
	defaultMaxBackups  = 5
)

// GetLogger returns the singleton logger instance.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = &AppLogger{
			level:       LevelInfo,
			out:         os.Stderr,
			maxFileSize: defaultMaxFileSize,
			maxBackups:  defaultMaxBackups,
		}
	})
	return defaultLogger
}

// InitLogger configures the default logger. Call it once at startup.
func InitLogger(config LogConfig) error {
	logger := GetLogger()
	logger.SetLevel(config.Level)

	logger.mu.Lock()
	if config.MaxFileSize > 0 {
		logger.maxFileSize = config.MaxFileSize
	}
	if config.MaxBackups > 0 {
		logger.maxBackups = config.MaxBackups
	}
	if config.Dir != "" {
		logger.logDir = config.Dir
	}
	logger.mu.Unlock()

	if config.EnableFile {
		return logger.EnableFileLogging()
	}
	return nil
}

// SetLevel sets the minimum log level.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput replaces the console destination. A log file, if enabled,
// keeps receiving every line.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// EnableFileLogging mirrors every line into LogFileName inside the log
// directory. The file rolls over to numbered backups when it grows past
// the size limit.
func (l *AppLogger) EnableFileLogging() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := l.logDir
	if dir == "" {
		dir = GetLogDir()
		if dir == "" {
			return fmt.Errorf("could not determine log directory")
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	file, err := openRotatingFile(filepath.Join(dir, LogFileName), l.maxFileSize, l.maxBackups)
	if err != nil {
		return err
	}
	if l.file != nil {
		l.file.Close()
	}
	l.file = file
	return nil
}

// GetLogDir returns $XDG_STATE_HOME/maestral-gtk/logs, falling back to
// ~/.local/state.
func GetLogDir() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, ConfigDirName, "logs")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "state", ConfigDirName, "logs")
}

// log writes one line. component may be empty.
func (l *AppLogger) log(level LogLevel, component, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	if component != "" {
		msg = component + ": " + msg
	}
	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	line := fmt.Sprintf("%s %-5s %s (%s)\n",
		time.Now().Format("2006-01-02 15:04:05"), level, msg, caller)

	if l.out != nil {
		io.WriteString(l.out, line)
	}
	if l.file != nil {
		if _, err := io.WriteString(l.file, line); err != nil && l.out != nil {
			fmt.Fprintf(l.out, "log file write failed: %v\n", err)
		}
	}
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, "", msg, args...)
}

// Info logs an informational message.
func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, "", msg, args...)
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, "", msg, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, "", msg, args...)
}

// ComponentLogger prefixes every message with a component name.
// It satisfies the Logger interface.
type ComponentLogger struct {
	parent *AppLogger
	name   string
}

// Named returns a logger that tags its messages with name.
func (l *AppLogger) Named(name string) *ComponentLogger {
	return &ComponentLogger{parent: l, name: name}
}

// Debug logs a debug message.
func (c *ComponentLogger) Debug(msg string, args ...interface{}) {
	c.parent.log(LevelDebug, c.name, msg, args...)
}

// Info logs an informational message.
func (c *ComponentLogger) Info(msg string, args ...interface{}) {
	c.parent.log(LevelInfo, c.name, msg, args...)
}

// Warn logs a warning message.
func (c *ComponentLogger) Warn(msg string, args ...interface{}) {
	c.parent.log(LevelWarn, c.name, msg, args...)
}

// Error logs an error message.
func (c *ComponentLogger) Error(msg string, args ...interface{}) {
	c.parent.log(LevelError, c.name, msg, args...)
}

// Shorthand functions for default logger.

// LogDebug logs a debug message to the default logger.
func LogDebug(msg string, args ...interface{}) {
	GetLogger().log(LevelDebug, "", msg, args...)
}

// LogInfo logs an info message to the default logger.
func LogInfo(msg string, args ...interface{}) {
	GetLogger().log(LevelInfo, "", msg, args...)
}

// LogWarn logs a warning message to the default logger.
func LogWarn(msg string, args ...interface{}) {
	GetLogger().log(LevelWarn, "", msg, args...)
}

// LogError logs an error message to the default logger.
func LogError(msg string, args ...interface{}) {
	GetLogger().log(LevelError, "", msg, args...)
}

// Close closes the log file. Should be called on application shutdown.
func (l *AppLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// CloseLogger closes the default logger.
func CloseLogger() error {
	return GetLogger().Close()
}

// rotatingFile appends to a log file and rolls it over once it would grow
// past maxSize: name.1 is the newest backup, name.<backups> the oldest.
type rotatingFile struct {
	path    string
	maxSize int64
	backups int
	file    *os.File
	size    int64
}

func openRotatingFile(path string, maxSize int64, backups int) (*rotatingFile, error) {
	r := &rotatingFile{path: path, maxSize: maxSize, backups: backups}
	if err := r.open(os.O_APPEND); err != nil {
		return nil, err
	}
	if r.maxSize > 0 && r.size >= r.maxSize {
		if err := r.roll(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *rotatingFile) open(mode int) error {
	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|mode, 0600)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	r.file = file
	r.size = info.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.roll(); err != nil {
			return 0, err
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// roll shifts the numbered backups up by one and starts an empty file.
func (r *rotatingFile) roll() error {
	if err := r.file.Close(); err != nil {
		return err
	}
	if r.backups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", r.path, r.backups))
		for i := r.backups - 1; i >= 1; i-- {
			os.Rename(fmt.Sprintf("%s.%d", r.path, i), fmt.Sprintf("%s.%d", r.path, i+1))
		}
		if err := os.Rename(r.path, r.path+".1"); err != nil {
			return err
		}
	}
	return r.open(os.O_TRUNC)
}

func (r *rotatingFile) Close() error {
	return r.file.Close()
}
