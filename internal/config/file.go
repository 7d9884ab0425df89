package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".log-find-date.ini"

// FileConfig mirrors Config but uses strings for durations and pointers for
// numbers and booleans so that unset values can be told apart from zero.
type FileConfig struct {
	Input     string       `toml:"input" yaml:"input"`
	ChunkSize *int         `toml:"chunk_size" yaml:"chunk_size"`
	OutputDir string       `toml:"output_dir" yaml:"output_dir"`
	Output    string       `toml:"output" yaml:"output"`
	StripCR   *bool        `toml:"strip_cr" yaml:"strip_cr"`
	LogLevel  string       `toml:"log_level" yaml:"log_level"`
	LogFormat string       `toml:"log_format" yaml:"log_format"`
	Watch     *bool        `toml:"watch" yaml:"watch"`
	Debounce  string       `toml:"debounce" yaml:"debounce"`
	Telemetry *bool        `toml:"telemetry" yaml:"telemetry"`
	S3        S3FileConfig `toml:"s3" yaml:"s3"`
}

// S3FileConfig holds the settings for reading log files from S3.
type S3FileConfig struct {
	Region    string `toml:"region" yaml:"region"`
	Endpoint  string `toml:"endpoint" yaml:"endpoint"`
	PathStyle *bool  `toml:"path_style" yaml:"path_style"`
	AccessKey string `toml:"access_key" yaml:"access_key"`
	SecretKey string `toml:"secret_key" yaml:"secret_key"`
}

// LoadFile reads a config file. The format is chosen by extension: .toml,
// .yaml or .yml, and ini for anything else.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig

	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(&fc)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err = dec.Decode(&fc); err != nil && len(bytes.TrimSpace(b)) == 0 {
			err = nil
		}
	default:
		fc, err = loadINI(b)
	}
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fc, nil
}

// loadINI reads the sectioned ini layout:
//
//	[input]
//	file = /var/log/app.log
//	chunk_size = 4096
//
//	[output]
//	dir = output
//	file = output/today.txt
//	strip_cr = true
//
//	[log]
//	level = info
//	format = console
//
//	[watch]
//	enabled = false
//	debounce = 250ms
//
//	[telemetry]
//	enabled = false
//
//	[s3]
//	region = us-east-1
//	endpoint = http://localhost:9000
//	path_style = true
//	access_key = minio
//	secret_key = password
func loadINI(b []byte) (FileConfig, error) {
	var fc FileConfig

	iniFile, err := ini.Load(b)
	if err != nil {
		return fc, err
	}

	input := iniFile.Section("input")
	fc.Input = input.Key("file").String()
	if fc.ChunkSize, err = iniInt(input, "chunk_size"); err != nil {
		return fc, err
	}

	output := iniFile.Section("output")
	fc.OutputDir = output.Key("dir").String()
	fc.Output = output.Key("file").String()
	if fc.StripCR, err = iniBool(output, "strip_cr"); err != nil {
		return fc, err
	}

	logSection := iniFile.Section("log")
	fc.LogLevel = logSection.Key("level").String()
	fc.LogFormat = logSection.Key("format").String()

	watch := iniFile.Section("watch")
	fc.Debounce = watch.Key("debounce").String()
	if fc.Watch, err = iniBool(watch, "enabled"); err != nil {
		return fc, err
	}

	if fc.Telemetry, err = iniBool(iniFile.Section("telemetry"), "enabled"); err != nil {
		return fc, err
	}

	s3 := iniFile.Section("s3")
	fc.S3.Region = s3.Key("region").String()
	fc.S3.Endpoint = s3.Key("endpoint").String()
	fc.S3.AccessKey = s3.Key("access_key").String()
	fc.S3.SecretKey = s3.Key("secret_key").String()
	if fc.S3.PathStyle, err = iniBool(s3, "path_style"); err != nil {
		return fc, err
	}

	return fc, nil
}

func iniInt(sec *ini.Section, key string) (*int, error) {
	if !sec.HasKey(key) {
		return nil, nil
	}
	v, err := sec.Key(key).Int()
	if err != nil {
		return nil, fmt.Errorf("[%s] %s: %w", sec.Name(), key, err)
	}
	return &v, nil
}

func iniBool(sec *ini.Section, key string) (*bool, error) {
	if !sec.HasKey(key) {
		return nil, nil
	}
	v, err := sec.Key(key).Bool()
	if err != nil {
		return nil, fmt.Errorf("[%s] %s: %w", sec.Name(), key, err)
	}
	return &v, nil
}

// ApplyFileConfig applies configuration from a file to cfg, skipping every
// setting whose flag was set explicitly.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", fc.Input, &cfg.Input)
	s.setString("output-dir", fc.OutputDir, &cfg.OutputDir)
	s.setString("output", fc.Output, &cfg.Output)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("s3-region", fc.S3.Region, &cfg.S3Region)
	s.setString("s3-endpoint", fc.S3.Endpoint, &cfg.S3Endpoint)
	s.setString("s3-access-key", fc.S3.AccessKey, &cfg.S3AccessKey)
	s.setString("s3-secret-key", fc.S3.SecretKey, &cfg.S3SecretKey)

	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)

	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setBool("strip-cr", fc.StripCR, &cfg.StripCR)
	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setBool("telemetry", fc.Telemetry, &cfg.Telemetry)
	s.setBool("s3-path-style", fc.S3.PathStyle, &cfg.S3PathStyle)

	return nil
}

// DefaultConfigPath returns the path to the default config file in the
// user's home directory.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultConfigFile
	}
	return filepath.Join(homeDir, defaultConfigFile)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
