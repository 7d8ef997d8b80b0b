package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/awantoch/visitorcount/constants"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed counter.config.schema.json
var schemaJSON string

type Config struct {
	Storage StorageConfig  `json:"storage" yaml:"storage"`
	Event   *EventConfig   `json:"event,omitempty" yaml:"event,omitempty"`
	HTTP    HTTPConfig     `json:"http" yaml:"http"`
	Log     LogConfig      `json:"log" yaml:"log"`
	Tracing *TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// StorageConfig points the counter at its table store. ConnectionString
// selects the backend by scheme; see storage.NewTableFromConnectionString.
type StorageConfig struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
	Table            string `json:"table" yaml:"table"`
}

type EventConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

type HTTPConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type TracingConfig struct {
	Exporter    string `json:"exporter" yaml:"exporter"`
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
}

// Addr returns host:port for the HTTP listener.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// LoadConfig reads a JSON or YAML (by extension) config file and validates it
// against the embedded schema. It does not apply env overrides or defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonBytes, err := toJSON(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := Validate(jsonBytes); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(jsonBytes, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve loads the config at path if it exists, then applies environment
// overrides and defaults. A missing file is not an error.
func Resolve(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// Validate checks a JSON config document against the embedded schema.
func Validate(jsonBytes []byte) error {
	schema, err := jsonschema.CompileString(constants.ConfigSchemaFile, schemaJSON)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}

func toJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if doc == nil {
			doc = map[string]any{}
		}
		return json.Marshal(doc)
	default:
		return data, nil
	}
}

// ApplyEnv overlays environment variables on cfg. The store connection
// string falls back to the legacy AzureWebJobsStorage variable.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(constants.EnvConnectionString); v != "" {
		cfg.Storage.ConnectionString = v
	} else if cfg.Storage.ConnectionString == "" {
		cfg.Storage.ConnectionString = os.Getenv(constants.EnvLegacyConnectionString)
	}
	if v := os.Getenv(constants.EnvTableName); v != "" {
		cfg.Storage.Table = v
	}
	if v := os.Getenv(constants.EnvEventDriver); v != "" {
		if cfg.Event == nil {
			cfg.Event = &EventConfig{}
		}
		cfg.Event.Driver = v
	}
	if v := os.Getenv(constants.EnvEventURL); v != "" {
		if cfg.Event == nil {
			cfg.Event = &EventConfig{}
		}
		cfg.Event.URL = v
	}
	if v := os.Getenv(constants.EnvHTTPHost); v != "" {
		cfg.HTTP.Host = v
	}
	if v := os.Getenv(constants.EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s: %q", constants.EnvHTTPPort, v)
		}
		cfg.HTTP.Port = port
	}
	if v := os.Getenv(constants.EnvTracingExporter); v != "" {
		if cfg.Tracing == nil {
			cfg.Tracing = &TracingConfig{}
		}
		cfg.Tracing.Exporter = v
	}
	if v := os.Getenv(constants.EnvTracingEndpoint); v != "" {
		if cfg.Tracing == nil {
			cfg.Tracing = &TracingConfig{}
		}
		cfg.Tracing.Endpoint = v
	}
	if os.Getenv(constants.EnvDebug) != "" {
		cfg.Log.Level = "debug"
	}
	return nil
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.Table == "" {
		cfg.Storage.Table = constants.DefaultTableName
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = constants.DefaultHTTPHost
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = constants.DefaultHTTPPort
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = constants.DefaultLogLevel
	}
	if cfg.Tracing != nil && cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = constants.DefaultServiceName
	}
}
