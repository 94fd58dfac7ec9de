package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL runs the ledger without persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LedgerConfig controls how the in-memory ledger is seeded and checkpointed.
type LedgerConfig struct {
	// CheckpointIntervalSeconds of zero disables periodic checkpoints;
	// a final checkpoint is still written on shutdown.
	CheckpointIntervalSeconds int    `mapstructure:"checkpoint_interval_seconds" validate:"gte=0"`
	SeedFile                  string `mapstructure:"seed_file"`
}

// Persistent reports whether a database is configured.
func (c *Config) Persistent() bool {
	return c.Database.URL != ""
}
