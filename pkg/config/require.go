package config

import (
	"log"
	"os"
)

// MustEnv returns the value of key and stops the process when it is unset.
func MustEnv(key string) string {
	return MustNonEmpty(os.Getenv(key), key)
}

func MustNonEmpty(value, envName string) string {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
	return value
}
