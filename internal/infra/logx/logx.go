// Package logx 构造写到 stderr 的 zap logger（stdout 留给结果输出）。
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel 解析 debug/info/warn/error（大小写不敏感）。
func ParseLevel(s string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return l, fmt.Errorf("非法日志级别：%q", s)
	}
	switch l {
	case zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel:
		return l, nil
	default:
		return l, fmt.Errorf("非法日志级别：%q", s)
	}
}

// New 构造写到 stderr 的 logger。
func New(level, format string) (*zap.Logger, error) {
	return NewWriter(os.Stderr, level, format)
}

// NewWriter 与 New 相同，但输出到 w（测试用）。
func NewWriter(w io.Writer, level, format string) (*zap.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	enc, err := newEncoder(format)
	if err != nil {
		return nil, err
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), l)), nil
}

// FileOptions 描述可选的滚动日志文件；Path 为空表示不写文件。
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// NewTee 在 NewWriter 的基础上，把同一份日志以 JSON 追加到滚动文件里。
// 返回的 closer 负责 Sync 并关闭文件；未配置文件时只做 Sync。
func NewTee(w io.Writer, level, format string, file FileOptions) (*zap.Logger, func() error, error) {
	path := strings.TrimSpace(file.Path)
	if path == "" {
		log, err := NewWriter(w, level, format)
		if err != nil {
			return nil, nil, err
		}
		return log, log.Sync, nil
	}

	l, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	enc, err := newEncoder(format)
	if err != nil {
		return nil, nil, err
	}
	fileEnc, _ := newEncoder(FormatJSON)

	rot := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(w), l),
		zapcore.NewCore(fileEnc, zapcore.AddSync(rot), l),
	)
	log := zap.New(core)
	closer := func() error {
		_ = log.Sync()
		return rot.Close()
	}
	return log, closer, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	case FormatJSON:
		return zapcore.NewJSONEncoder(ec), nil
	default:
		return nil, fmt.Errorf("非法日志格式：%q（可选 console/json）", format)
	}
}
