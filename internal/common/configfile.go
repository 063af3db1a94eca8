package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the project config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the project file looked up in the working directory.
const ConfigFileName = "assay-loader.yaml"

type ConnectionFileConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

type SourceFileConfig struct {
	Sheet         string            `yaml:"sheet,omitempty"`
	HeaderAliases map[string]string `yaml:"header_aliases,omitempty"`
}

type LogFileConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}

type MetricsFileConfig struct {
	File string `yaml:"file,omitempty"`
}

// FileConfig mirrors assay-loader.yaml.
type FileConfig struct {
	Connection ConnectionFileConfig `yaml:"connection"`
	Source     SourceFileConfig     `yaml:"source"`
	Log        LogFileConfig        `yaml:"log"`
	Metrics    MetricsFileConfig    `yaml:"metrics"`
}

// LoadFile reads and validates a project config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return ParseFile(data)
}

// ParseFile decodes YAML config content after checking it against the file schema.
func ParseFile(data []byte) (*FileConfig, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "parse config yaml", errors.Join(ErrInvalidInput, err))
	}
	if generic != nil {
		asJSON, err := json.Marshal(generic)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "config must be a mapping with string keys", errors.Join(ErrInvalidInput, err))
		}
		if err := ValidateJSONAgainstSchema(fileConfigSchema(), asJSON); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "invalid config", errors.Join(ErrInvalidInput, err))
		}
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "decode config", errors.Join(ErrInvalidInput, err))
	}
	return &cfg, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}

func fileConfigSchema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"connection": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"host":     str,
					"port":     map[string]any{"type": "integer", "minimum": 1, "maximum": 65535},
					"database": str,
					"username": str,
					"password": str,
					"sslmode": map[string]any{
						"type": "string",
						"enum": []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"},
					},
				},
			},
			"source": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"sheet": map[string]any{"type": "string", "minLength": 1},
					"header_aliases": map[string]any{
						"type":                 "object",
						"additionalProperties": str,
					},
				},
			},
			"log": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"file":  str,
					"level": map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "error"}},
				},
			},
			"metrics": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"file": str,
				},
			},
		},
	}
}
