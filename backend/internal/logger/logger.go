package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"player-controller/backend/internal/config"
)

// New создает zap логгер по конфигурации
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	// Игровой цикл пишет много однотипных сообщений
	zapConfig.Sampling = nil

	return zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// StdLog возвращает *log.Logger поверх zap, помеченный именем компонента
func StdLog(z *zap.Logger, component string) *log.Logger {
	if z == nil {
		return log.Default()
	}
	return zap.NewStdLog(z.Named(component))
}

// Nop возвращает логгер, который ничего не пишет (для тестов)
func Nop() *log.Logger {
	return zap.NewStdLog(zap.NewNop())
}
