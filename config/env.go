package config

import (
	"os"
)

// Environment names the runtime environment the process was started in.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment resolves the current environment. CI detection takes
// precedence; otherwise ENV decides, defaulting to development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether the process runs in production.
func IsProduction() bool {
	return GetEnvironment() == Production
}
