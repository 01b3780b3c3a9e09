package main

import (
	"github.com/dmitrymomot/statekit/pkg/config"
)

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
	driverRedis    = "redis"
	driverMongo    = "mongo"
)

type appConfig struct {
	Driver      string `env:"STATEKIT_DRIVER" envDefault:"memory"`   // Driver selects the record store: memory, postgres, redis or mongo.
	LogLevel    string `env:"STATEKIT_LOG_LEVEL"`                    // LogLevel overrides the environment's default level.
	Env         string `env:"STATEKIT_ENV" envDefault:"development"` // Env is development, staging or production.
	MetricsAddr string `env:"STATEKIT_METRICS_ADDR"`                 // MetricsAddr enables the Prometheus endpoint when set, e.g. ":9090".
	RulesFile   string `env:"STATEKIT_RULES_FILE"`                   // RulesFile replaces the built-in review rules.
}

// loadConfig reads T from a.environ when it is set and from the process
// environment (and .env) otherwise.
func loadConfig[T any](a *app) (T, error) {
	if a.environ != nil {
		return config.Parse[T](config.WithEnvironment(a.environ))
	}
	var v T
	err := config.Load(&v)
	return v, err
}
