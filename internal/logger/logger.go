package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	tag   string
	sugar *zap.SugaredLogger
}

var (
	logManager *zap.Logger
	logFile    *os.File
	once       sync.Once
)

// InitLogger builds the process logger. Records go to a timestamped file
// under logPath when it is set, and in dev mode also to view (the debug
// console) using tview color tags.
func InitLogger(dev bool, logPath string, view io.Writer) {
	once.Do(func() {
		var cores []zapcore.Core

		if logPath != "" {
			timestamp := time.Now().Format("20060102_150405")
			fileName := fmt.Sprintf("deepchat_log_%s.log", timestamp)
			filePath := filepath.Join(logPath, fileName)

			file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				log.Fatalf("Failed to open log file: %s", err)
			}
			logFile = file

			cfg := zap.NewProductionEncoderConfig()
			cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
			cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(file), zapcore.DebugLevel))
		}

		if dev {
			out := view
			if out == nil {
				out = os.Stderr
			}
			cfg := zapcore.EncoderConfig{
				MessageKey:  "msg",
				LevelKey:    "level",
				NameKey:     "tag",
				EncodeLevel: consoleLevelEncoder,
				EncodeName:  zapcore.FullNameEncoder,
			}
			cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(out), zapcore.DebugLevel))
		}

		if len(cores) == 0 {
			logManager = zap.NewNop()
			return
		}
		logManager = zap.New(zapcore.NewTee(cores...))
	})
}

// NewLogger returns a logger tagged with the given component name. It is a
// no-op until InitLogger has run.
func NewLogger(tag string) *Logger {
	base := logManager
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{
		tag:   tag,
		sugar: base.Named(tag).Sugar(),
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.sugar.Info(v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.sugar.Error(v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.sugar.Warn(v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.sugar.Fatal(v...)
}

// Zap exposes the underlying structured logger for middleware that logs
// typed fields.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

func (l *Logger) Close() {
	_ = l.sugar.Sync()
	if logFile != nil {
		logFile.Close()
	}
}

func consoleLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.InfoLevel, zapcore.DebugLevel:
		enc.AppendString("[green]" + level.CapitalString() + "[-]")
	case zapcore.WarnLevel:
		enc.AppendString("[yellow]" + level.CapitalString() + "[-]")
	default:
		enc.AppendString("[red]" + level.CapitalString() + "[-]")
	}
}
