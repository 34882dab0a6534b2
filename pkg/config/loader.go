package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.RWMutex
	loaded = make(map[string]any)

	dotenvOnce sync.Once
)

// Load parses environment variables into the provided configuration struct
// based on `env` field tags. The first call loads a .env file if one exists.
// Each configuration type is parsed at most once per process; later calls
// for the same type return the cached value, so secrets read at startup stay
// immutable for the process lifetime.
//
// Example:
//
//	type TokenConfig struct {
//		SigningKey string `env:"TOKEN_SIGNING_KEY,required"`
//		AuthTTL    time.Duration `env:"TOKEN_AUTH_TTL" envDefault:"168h"`
//	}
//
//	var cfg TokenConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// The .env file is optional; absence is not an error.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := typeName[T]()

	mu.RLock()
	cached, ok := loaded[key]
	mu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if cached, ok := loaded[key]; ok {
		// Another goroutine parsed the same type concurrently; keep the
		// first result so every caller observes identical config.
		*v = cached.(T)
		return nil
	}
	loaded[key] = *v

	return nil
}

// MustLoad works like Load but panics on failure. Use for configuration the
// process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// typeName returns a string identifier for the generic type T.
func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
