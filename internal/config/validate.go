package config

import (
	"errors"
	"fmt"
)

var knownSymbologies = map[string]struct{}{
	"ean13":   {},
	"ean8":    {},
	"upca":    {},
	"upce":    {},
	"code128": {},
	"code39":  {},
	"qrcode":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/shelfscan/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set SHELFSCAN_TMDB_API_KEY or edit %s (create with 'shelfscan config init')", defaultPath)
	}
	if c.TMDB.BaseURL == "" {
		return errors.New("tmdb.base_url must be set")
	}
	return nil
}

func (c *Config) validateScanner() error {
	if c.Scanner.SampleRateFPS <= 0 {
		return errors.New("scanner.sample_rate_fps must be positive")
	}
	if c.Scanner.RegionScale <= 0 || c.Scanner.RegionScale > 1 {
		return errors.New("scanner.region_scale must be in (0, 1]")
	}
	if len(c.Scanner.Symbologies) == 0 {
		return errors.New("scanner.symbologies must list at least one symbology")
	}
	for _, sym := range c.Scanner.Symbologies {
		if _, ok := knownSymbologies[sym]; !ok {
			return fmt.Errorf("scanner.symbologies: unknown symbology %q", sym)
		}
	}
	if c.Scanner.SettleDelayMS < 0 {
		return errors.New("scanner.settle_delay_ms must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
