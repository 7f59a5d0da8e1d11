package app

import (
	"github.com/crewlinkhq/crewlink/internal/auth"
	"github.com/crewlinkhq/crewlink/internal/cache"
	"github.com/crewlinkhq/crewlink/internal/database"
	"github.com/crewlinkhq/crewlink/internal/wage"
)

// JWTServiceConfig converts the auth settings into the auth package's config.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	cfg := auth.JWTConfig{
		Secret:   c.JWT.Secret,
		Issuer:   c.JWT.Issuer,
		TokenTTL: c.JWT.TTL,
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = auth.DefaultTokenTTL
	}
	return cfg
}

// DatabaseConfig converts the database settings into the storage layer's config.
func (c DatabaseConfig) DatabaseConfig() database.Config {
	cfg := database.Config{
		Driver: c.Driver,
		Path:   c.Path,
		DSN:    c.DSN,
	}

	switch {
	case c.Postgres.Enabled:
		cfg.Driver = "postgres"
		cfg.Host = c.Postgres.Host
		cfg.Port = c.Postgres.Port
		cfg.Name = c.Postgres.Database
		cfg.User = c.Postgres.Username
		cfg.Password = c.Postgres.Password
	case c.MySQL.Enabled:
		cfg.Driver = "mysql"
		cfg.Host = c.MySQL.Host
		cfg.Port = c.MySQL.Port
		cfg.Name = c.MySQL.Database
		cfg.User = c.MySQL.Username
		cfg.Password = c.MySQL.Password
	}

	return cfg
}

// RedisStoreConfig converts the cache settings into the cache package's config.
func (c CacheConfig) RedisStoreConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  c.Redis.Address,
		Username: c.Redis.Username,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Timeout:  c.Redis.Timeout,
	}
}

// NormalizerOptions converts the wage settings into normalizer options.
func (c WageConfig) NormalizerOptions() []wage.Option {
	var opts []wage.Option
	if c.HoursPerWorkday > 0 {
		opts = append(opts, wage.WithHoursPerWorkday(c.HoursPerWorkday))
	}
	return opts
}
