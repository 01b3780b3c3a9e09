package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache keeps one parsed value per configuration type.
type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	globalCache = &cache{values: make(map[reflect.Type]any)}

	defaultEnvLoaded sync.Once
)

// Load fills v from the environment. The default .env file in the working
// directory is read once per process if it exists; variables already set in the
// environment win. Each configuration type is parsed once and served from the
// cache afterwards.
//
//	type StoreConfig struct {
//		Driver string `env:"STATEKIT_DRIVER" envDefault:"memory"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// A missing .env file is not an error.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	if cached, ok := globalCache.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	parsed, err := Parse[T]()
	if err != nil {
		return err
	}

	globalCache.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ParseOption tunes a single Parse call.
type ParseOption func(*env.Options)

// WithPrefix prepends prefix to every variable name of the struct.
func WithPrefix(prefix string) ParseOption {
	return func(o *env.Options) {
		o.Prefix = prefix
	}
}

// WithEnvironment parses from the given variables instead of the process environment.
func WithEnvironment(vars map[string]string) ParseOption {
	return func(o *env.Options) {
		o.Environment = vars
	}
}

// Parse builds a T from the environment without touching the cache.
func Parse[T any](opts ...ParseOption) (T, error) {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}

	v, err := env.ParseAsWithOptions[T](o)
	if err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// LoadEnv reads the given .env files into the process environment without
// overriding variables that are already set.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// ResetCache drops every cached configuration. Intended for tests.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[reflect.Type]any)
}
