package config

const (
	defaultCatalogDir   = "~/.local/share/shelfscan"
	defaultLogDir       = "~/.local/share/shelfscan/logs"
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBLanguage = "en-US"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultOMDBBaseURL  = "https://www.omdbapi.com"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultSampleFPS    = 10
	defaultRegionScale  = 0.7
	defaultSettleMS     = 1000
	defaultZbarBinary   = "zbarcam"
)

// defaultSymbologies is the retail barcode set plus QR, matching what a DVD
// case or rental sticker can carry.
func defaultSymbologies() []string {
	return []string{"ean13", "ean8", "upca", "upce", "code128", "code39", "qrcode"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogDir: defaultCatalogDir,
			LogDir:     defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			Language:     defaultTMDBLanguage,
			ImageBaseURL: defaultImageBaseURL,
		},
		OMDB: OMDB{
			BaseURL: defaultOMDBBaseURL,
		},
		Scanner: Scanner{
			SampleRateFPS: defaultSampleFPS,
			RegionScale:   defaultRegionScale,
			Symbologies:   defaultSymbologies(),
			SettleDelayMS: defaultSettleMS,
			ZbarBinary:    defaultZbarBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
