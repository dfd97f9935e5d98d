// Package logger は構造化ログの薄いラッパーを提供します。
package logger

import (
	"log/slog"
	"os"
)

// Logger はアプリケーションロガーです。
type Logger struct {
	*slog.Logger
}

// New は指定レベルの Logger を作成します。
func New(level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Fatal は Error を出力した後に os.Exit(1) を呼びます。
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
