package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that everything the given environment requires is set.
// Development and test environments only need database coordinates; production
// additionally requires a JWT secret and a database password.
func ValidateConfig(cfg *Config, env Environment) error {
	var missing []string

	if cfg.DBHost == "" {
		missing = append(missing, "db_host")
	}
	if cfg.DBUser == "" {
		missing = append(missing, "db_user")
	}
	if cfg.DBName == "" {
		missing = append(missing, "db_name")
	}

	if env == Production {
		if cfg.DBPassword == "" {
			missing = append(missing, "db_password")
		}
		if cfg.JWTSecret == "" {
			missing = append(missing, "jwt_secret")
		}
	}

	if len(missing) > 0 {
		return ValidationError{
			Field:   strings.Join(missing, ", "),
			Message: "required configuration is missing",
		}
	}
	return nil
}
