package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type ConfigParam struct {
	// SlugProbeLimit caps the base, base-1, base-2, ... probe sequence when
	// generating a unique slug.
	SlugProbeLimit int `toml:"slug_probe_limit"`
	// SlugRetryAttempts bounds the regenerate-and-retry loop when a slug
	// commit loses a uniqueness race.
	SlugRetryAttempts int `toml:"slug_retry_attempts"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

func LoadConfig(filename string) error {
	if filename == "" {
		cfg = &ConfigParam{
			SlugProbeLimit:    1000,
			SlugRetryAttempts: 5,
		}
		return nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	var cp ConfigParam
	if _, err := toml.Decode(string(content), &cp); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}
	if cp.SlugProbeLimit <= 0 {
		cp.SlugProbeLimit = 1000
	}
	if cp.SlugRetryAttempts <= 0 {
		cp.SlugRetryAttempts = 5
	}
	cfg = &cp
	return nil
}

func init() {
	err := LoadConfig("")
	if err != nil {
		panic(err)
	}
}
