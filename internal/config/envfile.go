package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// WithEnvFile layers the dotenv file at path under base. Keys present in
// base win, including keys set to the empty string.
func WithEnvFile(base Lookup, path string) (Lookup, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: env file load failed (%s): %v", ErrInvalid, path, err)
	}
	return func(key string) (string, bool) {
		if base != nil {
			if v, ok := base(key); ok {
				return v, true
			}
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// MapLookup adapts a plain map, mostly for tests and tooling.
func MapLookup(values map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}
