package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/veridoc/data/audit.db"
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = "eng"
	}
	if cfg.Pipeline.FastPathMinChars == 0 {
		cfg.Pipeline.FastPathMinChars = 80
	}
	if cfg.Pipeline.RasterDPI == 0 {
		cfg.Pipeline.RasterDPI = 200
	}
	if cfg.Pipeline.MaxWorkers == 0 {
		cfg.Pipeline.MaxWorkers = 4
	}
	if cfg.Fraud.ManipulationScore == 0 {
		cfg.Fraud.ManipulationScore = 50
	}
	if cfg.Authenticity.URL == "" {
		cfg.Authenticity.URL = "https://api.sightengine.com/1.0/check.json"
	}
	if cfg.Authenticity.TimeoutSeconds == 0 {
		cfg.Authenticity.TimeoutSeconds = 30
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
