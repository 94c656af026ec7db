package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup reads key and parses it, falling back to def when the variable is unset or
// does not parse.
func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func EnvDefault(key, def string) string {
	return lookup(key, def, func(s string) (string, error) { return s, nil })
}

func EnvIntDefault(key string, def int) int {
	return lookup(key, def, strconv.Atoi)
}

func EnvBoolDefault(key string, def bool) bool {
	return lookup(key, def, strconv.ParseBool)
}

// EnvDurationDefault accepts Go duration strings ("30m", "12h") or a bare number of seconds.
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	return lookup(key, def, parseDuration)
}

func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

// CSV splits a comma separated list, dropping blanks.
func CSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
