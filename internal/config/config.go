package config

import (
	"time"

	"github.com/landonharris622-gif/Primal-live/internal/cache"
	"github.com/landonharris622-gif/Primal-live/internal/hub"
	pkgconfig "github.com/landonharris622-gif/Primal-live/pkg/config"
	"github.com/landonharris622-gif/Primal-live/pkg/database"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
	"github.com/landonharris622-gif/Primal-live/pkg/storage"
)

type Config struct {
	Server   ServerConfig
	Database database.Config `mapstructure:"database"`
	Redis    cache.RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Mux      MuxConfig
	Relay    hub.Config
	Log      log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type CacheConfig struct {
	Prefix string `mapstructure:"prefix"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessDuration  time.Duration `mapstructure:"access_duration"`
	RefreshDuration time.Duration `mapstructure:"refresh_duration"`
	Issuer          string        `mapstructure:"issuer"`
}

type StorageConfig struct {
	Driver string              `mapstructure:"driver"` // local or s3
	Local  storage.LocalConfig `mapstructure:"local"`
	S3     storage.S3Config    `mapstructure:"s3"`
}

type MuxConfig struct {
	TokenID     string `mapstructure:"token_id"`
	TokenSecret string `mapstructure:"token_secret"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "primal_live")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.filepath", "./data/primal.db")
	v.SetDefault("database.maxidleconns", 10)
	v.SetDefault("database.maxopenconns", 100)
	v.SetDefault("database.connmaxlifetime", 60)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.prefix", "stream")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_duration", "15m")
	v.SetDefault("jwt.refresh_duration", "168h")
	v.SetDefault("jwt.issuer", "primal-live")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "./data/uploads")
	v.SetDefault("storage.local.public_url", "/uploads")
	v.SetDefault("relay.write_wait", "10s")
	v.SetDefault("relay.pong_wait", "60s")
	v.SetDefault("relay.ping_interval", "30s")
	v.SetDefault("relay.max_message_size", 4096)
	v.SetDefault("relay.send_buffer_size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.filepath", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.local.base_path", "STORAGE_LOCAL_PATH")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.region", "S3_REGION")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("mux.token_id", "MUX_TOKEN_ID")
	v.BindEnv("mux.token_secret", "MUX_TOKEN_SECRET")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
