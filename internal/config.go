package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	AuthAnonymous = "anonymous"
	AuthPassword  = "password"
	AuthToken     = "token"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,required=true" validate:"gt=0,lt=65536"`
	LogLevel string `env:"LOG_LEVEL,required=true"`

	SessionAgeLimit      time.Duration `env:"SESSION_AGE_LIMIT,default=20m" validate:"gt=0"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL,default=1m" validate:"gt=0"`

	NumberOfWorkers    int  `env:"NUMBER_OF_WORKERS,required=true" validate:"gt=0"`
	QueueCapacity      int  `env:"QUEUE_CAPACITY,required=true" validate:"gt=0"`
	BlockingDelivery   bool `env:"BLOCKING_DELIVERY,default=false"`
	CallbackBufferSize int  `env:"CALLBACK_BUFFER_SIZE,default=256" validate:"gt=0"`

	AuthMode          string        `env:"AUTH_MODE,default=anonymous" validate:"oneof=anonymous password token"`
	JWTSecret         string        `env:"JWT_SECRET" validate:"omitempty,min=32"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h" validate:"gt=0"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`

	DebugPort     int           `env:"DEBUG_PORT,default=8081"`
	StatsInterval time.Duration `env:"STATS_INTERVAL,default=30s" validate:"gt=0"`
	ClockInterval time.Duration `env:"CLOCK_INTERVAL,default=1s" validate:"gt=0"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf(".env loading failed: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, err
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, err
	}
	if config.AuthMode == AuthToken && config.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=%s", AuthToken)
	}
	return config, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
