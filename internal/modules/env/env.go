package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	ErrNotFound         = errors.New("environment variable with key not found")
	ErrConversionFailed = errors.New("failed to convert environment variable with key to value")
)

func errNotFound(key string) error {
	return fmt.Errorf("key: %s: %w", key, ErrNotFound)
}

func errConversionFailed(key string, typeName string, err error) error {
	return fmt.Errorf("key: %s type: %s: %w: %v", key, typeName, ErrConversionFailed, err)
}

func MustGetString(key string) string {
	if val, found := os.LookupEnv(key); found {
		return val
	}

	panic(errNotFound(key))
}

func MustGetInt(key string) int {
	envVal, found := os.LookupEnv(key)
	if !found {
		panic(errNotFound(key))
	}

	val, err := strconv.Atoi(envVal)
	if err != nil {
		panic(errConversionFailed(key, "int", err))
	}

	return val
}

func GetStringOrDefault(key string, defaultVal string) string {
	if val, found := os.LookupEnv(key); found && val != "" {
		return val
	}

	return defaultVal
}

// The OrDefault getters below still panic when the variable is set but malformed.

func GetIntOrDefault(key string, defaultVal int) int {
	envVal, found := os.LookupEnv(key)
	if !found || envVal == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(envVal)
	if err != nil {
		panic(errConversionFailed(key, "int", err))
	}

	return val
}

func GetBoolOrDefault(key string, defaultVal bool) bool {
	envVal, found := os.LookupEnv(key)
	if !found || envVal == "" {
		return defaultVal
	}

	val, err := strconv.ParseBool(envVal)
	if err != nil {
		panic(errConversionFailed(key, "bool", err))
	}

	return val
}

func GetDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	envVal, found := os.LookupEnv(key)
	if !found || envVal == "" {
		return defaultVal
	}

	val, err := time.ParseDuration(envVal)
	if err != nil {
		panic(errConversionFailed(key, "time.Duration", err))
	}

	return val
}
