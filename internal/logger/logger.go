// Package logger cria o logger estruturado da aplicação
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sugared é o logger usado em toda a aplicação
type Sugared = *zap.SugaredLogger

// New cria o logger conforme o ambiente: JSON em produção, console colorido nos demais.
// level aceita debug, info, warn ou error; valores inválidos caem para info.
func New(env, level string) Sugared {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return z.Sugar()
}

// Nop retorna um logger que descarta tudo (testes)
func Nop() Sugared {
	return zap.NewNop().Sugar()
}
