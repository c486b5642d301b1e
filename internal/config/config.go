package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	GinMode         string        `mapstructure:"gin_mode"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"` // Duration string in the file, e.g. "60m"
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	File     string `mapstructure:"file"` // Empty means stdout only
	ToStdout bool   `mapstructure:"to_stdout"`
	JSON     bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// CacheConfig sizes the in-process exercise catalog cache.
type CacheConfig struct {
	ExerciseSizeMB int           `mapstructure:"exercise_size_mb"`
	ExerciseTTL    time.Duration `mapstructure:"exercise_ttl"`
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("server.gin_mode", "release")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "fitness_tracker")
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.to_stdout", true)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.namespace", "fitness_tracker")
	viper.SetDefault("metrics.subsystem", "api")
	viper.SetDefault("cache.exercise_size_mb", 8)
	viper.SetDefault("cache.exercise_ttl", "10m")
}

// LoadConfig reads config.yaml from path, then lets environment variables
// override it (server.address -> SERVER_ADDRESS). Flags bound to the global
// viper instance before the call take precedence over both.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults()

	// A missing file is fine; env vars and defaults may be enough.
	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, err
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return config, err
	}
	return config, config.validate()
}

func (c Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.Database.URI == "" || c.Database.Name == "" {
		return errors.New("database.uri and database.name must be set")
	}
	if c.Cache.ExerciseSizeMB < 1 {
		return errors.New("cache.exercise_size_mb must be at least 1")
	}
	return nil
}
