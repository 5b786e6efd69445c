package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kaptinlin/jsonschema"
	"gopkg.in/yaml.v3"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/core/render"
	"github.com/penwyp/go-codex-trace/internal/util"
)

const (
	DefaultConfigFile   = "~/.go-codex-trace/config.yaml"
	DefaultSessionsRoot = "~/.codex/sessions"
	DefaultLogFile      = "~/.go-codex-trace/logs/app.log"
	DefaultCacheDir     = "~/.go-codex-trace/cache"
	DefaultOutputDir    = "session_markdown_traces"
)

//go:embed schema.json
var schemaJSON []byte

type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

type RenderConfig struct {
	Mode              string `yaml:"mode"`
	TruncateThreshold int    `yaml:"truncate_threshold"`
	TruncateKeep      int    `yaml:"truncate_keep"`
	OutputDir         string `yaml:"output_dir"`
	// Concurrency 0 means one worker per CPU.
	Concurrency int `yaml:"concurrency"`
}

type FindConfig struct {
	Format string `yaml:"format"`
}

type CacheConfig struct {
	Dir     string `yaml:"dir"`
	Enabled bool   `yaml:"enabled"`
}

// Config is the merged tool configuration.
type Config struct {
	SessionsRoot string       `yaml:"sessions_root"`
	Timezone     string       `yaml:"timezone"`
	Log          LogConfig    `yaml:"log"`
	Render       RenderConfig `yaml:"render"`
	Find         FindConfig   `yaml:"find"`
	Cache        CacheConfig  `yaml:"cache"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SessionsRoot: DefaultSessionsRoot,
		Timezone:     "Local",
		Log: LogConfig{
			Level:  "info",
			File:   DefaultLogFile,
			Format: string(util.FormatText),
		},
		Render: RenderConfig{
			Mode:              string(render.ModeConcise),
			TruncateThreshold: render.DefaultThreshold,
			TruncateKeep:      render.DefaultKeep,
			OutputDir:         DefaultOutputDir,
		},
		Find:  FindConfig{Format: "json"},
		Cache: CacheConfig{Dir: DefaultCacheDir, Enabled: true},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is an
// error only when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(util.ExpandPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, coreerrors.Wrap(fmt.Errorf("read config %s: %w", path, err),
			coreerrors.CategoryUsage, "config_unreadable", "")
	}

	if err := Parse(data, cfg); err != nil {
		return nil, coreerrors.Wrap(fmt.Errorf("config %s: %w", path, err),
			coreerrors.CategoryUsage, "invalid_config", "")
	}
	util.LogDebugf("Loaded config from %s", path)
	return cfg, nil
}

// Parse validates a YAML document against the config schema and decodes it
// into cfg, leaving keys absent from the document untouched.
func Parse(data []byte, cfg *Config) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return cfg.Validate()
	}

	asJSON, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	if err := validateSchema(asJSON); err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks rules the schema cannot express.
func (c *Config) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// Policy returns the render policy described by the config.
func (c *Config) Policy() render.Policy {
	return render.Policy{
		Mode:      render.Mode(c.Render.Mode),
		Threshold: c.Render.TruncateThreshold,
		Keep:      c.Render.TruncateKeep,
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func validateSchema(data []byte) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		schema, schemaErr = compiler.Compile(schemaJSON)
	})
	if schemaErr != nil {
		return fmt.Errorf("compile config schema: %w", schemaErr)
	}

	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
