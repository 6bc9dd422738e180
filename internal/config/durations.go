package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// durationOr parses value, falling back to def when it is empty or malformed.
func durationOr(field, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Err(err).Str("field", field).Str("value", value).Dur("default", def).Msg("Invalid duration in configuration, using default")
		return def
	}
	return d
}

// AccessTokenTTL is the validity window of issued tokens.
func (c *Config) AccessTokenTTL() time.Duration {
	return durationOr("jwt.access_token_expiration", c.JWT.AccessTokenExpiration, 24*time.Hour)
}

// VisionTimeout bounds a single vision model call.
func (c *Config) VisionTimeout() time.Duration {
	return durationOr("vision.timeout", c.Vision.Timeout, 60*time.Second)
}

// ReadTimeout is the HTTP server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return durationOr("server.read_timeout", c.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout is the HTTP server write timeout. It must exceed VisionTimeout.
func (c *Config) WriteTimeout() time.Duration {
	return durationOr("server.write_timeout", c.Server.WriteTimeout, 90*time.Second)
}

// ConnectTimeout bounds the initial database connection.
func (c *Config) ConnectTimeout() time.Duration {
	return durationOr("database.connect_timeout", c.Database.ConnectTimeout, 10*time.Second)
}

// ConnMaxLifetime is the maximum lifetime of a pooled postgres connection.
func (c *Config) ConnMaxLifetime() time.Duration {
	return durationOr("database.conn_max_lifetime", c.Database.ConnMaxLifetime, time.Hour)
}
