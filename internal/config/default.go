package config

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Default returns the shipped default configuration, parsed from the
// embedded YAML text so the fallback struct and the on-disk example can
// never silently diverge (SPEC_FULL §6).
func Default() *Config {
	cfg, err := parseYAML(defaultConfigYAML)
	if err != nil {
		// The embedded default is a build-time constant; a parse failure
		// here is a programmer error, not a runtime condition.
		panic("config: embedded default_config.yaml is invalid: " + err.Error())
	}
	if err := cfg.validate(); err != nil {
		panic("config: embedded default_config.yaml fails validation: " + err.Error())
	}
	return cfg
}

func parseYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
