package database

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormWriter forwards gorm's log lines to the global zerolog logger.
type gormWriter struct {
	level zerolog.Level
}

func (w gormWriter) Printf(format string, args ...any) {
	log.WithLevel(w.level).Str("component", "gorm").Msgf(format, args...)
}

// newGormLogger logs every statement when logQueries is set, and only
// failures and slow queries otherwise. Lookups that find nothing are never logged.
func newGormLogger(logQueries bool) logger.Interface {
	level := logger.Warn
	zlevel := zerolog.WarnLevel
	if logQueries {
		level = logger.Info
		zlevel = zerolog.InfoLevel
	}
	return logger.New(gormWriter{level: zlevel}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
