package config

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "LOG_FIND_DATE_"

// ApplyEnvConfig applies LOG_FIND_DATE_* environment variables to cfg.
// They override the config file but not flags that were set explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	return applyEnv(cfg, changed, os.Getenv)
}

func applyEnv(cfg *Config, changed map[string]bool, getenv func(string) string) error {
	s := newConfigSetter(changed)
	env := func(name string) string {
		return getenv(EnvPrefix + name)
	}

	s.setString("input", env("INPUT"), &cfg.Input)
	s.setString("output-dir", env("OUTPUT_DIR"), &cfg.OutputDir)
	s.setString("output", env("OUTPUT"), &cfg.Output)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", env("LOG_FORMAT"), &cfg.LogFormat)
	s.setString("s3-region", env("S3_REGION"), &cfg.S3Region)
	s.setString("s3-endpoint", env("S3_ENDPOINT"), &cfg.S3Endpoint)
	s.setString("s3-access-key", env("S3_ACCESS_KEY"), &cfg.S3AccessKey)
	s.setString("s3-secret-key", env("S3_SECRET_KEY"), &cfg.S3SecretKey)

	if err := s.setIntFromString("chunk-size", env("CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.setDuration("debounce", env("DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	for _, b := range []struct {
		flag, name string
		dst        *bool
	}{
		{"strip-cr", "STRIP_CR", &cfg.StripCR},
		{"watch", "WATCH", &cfg.Watch},
		{"telemetry", "TELEMETRY", &cfg.Telemetry},
		{"s3-path-style", "S3_PATH_STYLE", &cfg.S3PathStyle},
	} {
		if err := s.setBoolFromString(b.flag, env(b.name), b.dst); err != nil {
			return err
		}
	}

	return nil
}
