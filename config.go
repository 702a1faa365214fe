package main

import "github.com/ilyakaznacheev/cleanenv"

// Config is populated from environment variables. Defaults suit local
// development; production deployments must set JWT_SECRET and DATABASE_URL.
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL" env-default:"user=admin password=password dbname=cofounddb sslmode=disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"migrations"`
	RedisAddr      string `env:"REDIS_ADDR" env-default:""`
	JWTSecret      string `env:"JWT_SECRET" env-default:"your_secret_key_please_change_in_production"`
	Port           string `env:"PORT" env-default:"8080"`
	Env            string `env:"GO_ENV" env-default:"development"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
