package conversation

import (
	"fmt"

	"github.com/go-redis/redis"
	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"gorm.io/gorm"
)

// NewStore picks the backend the settings ask for.
func NewStore(cfg config.StateConfig, db *gorm.DB, rc *redis.Client, lg *Logger.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		lg.Infof("conversation state held in memory")
		return NewMemoryStore(), nil
	case "redis":
		if rc == nil {
			return nil, fmt.Errorf("redis state backend requires a redis connection")
		}
		lg.Infof("conversation state backed by redis, ttl %s", cfg.TTL)
		return NewRedisStore(rc, cfg.TTL), nil
	case "mysql":
		if db == nil {
			return nil, fmt.Errorf("mysql state backend requires a database connection")
		}
		lg.Infof("conversation state backed by mysql")
		return NewGormStore(db), nil
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
}
