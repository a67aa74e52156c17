package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins over ENV so pipelines never pick
// up Docker secrets.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// ParseEnvironment maps an ENV value to an Environment. Unknown values are
// treated as development.
func ParseEnvironment(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// ReadsSecrets reports whether sensitive values may come from Docker secrets.
func (e Environment) ReadsSecrets() bool {
	return e != CI
}

// Local reports whether the environment may run with built-in development
// credentials.
func (e Environment) Local() bool {
	return e == Development || e == Test
}

// Strict reports whether configuration must be complete, with no fallbacks.
func (e Environment) Strict() bool {
	return e == CI || e == Production
}
