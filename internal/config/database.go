package config

import "fmt"

// Validate checks that the database config names a supported driver and a
// non-empty DSN.
func (d DatabaseConfig) Validate() error {
	switch d.Driver {
	case "", "sqlite", "turso":
	default:
		return fmt.Errorf("unsupported database driver %q", d.Driver)
	}
	if d.DSN == "" {
		return fmt.Errorf("database dsn must not be empty")
	}
	return nil
}
