package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/autoeval/data/db/uploads.db"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 2 * time.Hour
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = 256
	}
	if cfg.Analysis.MaxRows == 0 {
		cfg.Analysis.MaxRows = 1_000_000
	}
	if cfg.Analysis.ClusterSeed == 0 {
		cfg.Analysis.ClusterSeed = 42
	}
	if cfg.Analysis.MaxIterations == 0 {
		cfg.Analysis.MaxIterations = 300
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".csv", ".tsv", ".xlsx", ".xlsm", ".json"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		f := false
		cfg.Watch.Recursive = &f
	}
}
