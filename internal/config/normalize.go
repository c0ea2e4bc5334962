package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.CatalogDir, err = expandPath(c.Paths.CatalogDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")

	c.OMDB.APIKey = strings.TrimSpace(c.OMDB.APIKey)
	c.OMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.OMDB.BaseURL), "/")

	c.Scanner.Device = strings.TrimSpace(c.Scanner.Device)
	c.Scanner.ZbarBinary = strings.TrimSpace(c.Scanner.ZbarBinary)
	if c.Scanner.ZbarBinary == "" {
		c.Scanner.ZbarBinary = defaultZbarBinary
	}

	normalized := make([]string, 0, len(c.Scanner.Symbologies))
	for _, sym := range c.Scanner.Symbologies {
		sym = strings.ToLower(strings.TrimSpace(sym))
		if sym != "" {
			normalized = append(normalized, sym)
		}
	}
	c.Scanner.Symbologies = normalized

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
