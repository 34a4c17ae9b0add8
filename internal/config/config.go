// Package config builds the HTTP collaborator's configuration the way the
// teacher's plugin configs are built: struct-tag defaults applied first,
// then an optional raw map of overrides decoded on top, then validated.
package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/kfusac/httpspec/internal/httpclient"
)

var validate = validator.New()

// HTTPClientConfig is the loosely-typed, overridable shape of
// internal/httpclient.Config: struct tags carry both the default value
// (`default`, applied via creasty/defaults) and the document field name
// (`json`, used both for mapstructure decoding and for any JSON/YAML
// settings file).
type HTTPClientConfig struct {
	Timeout     time.Duration `json:"timeout" default:"30s" validate:"required"`
	MaxRetries  int           `json:"max_retries" default:"3" validate:"min=0"`
	RetryWaitMS int           `json:"retry_wait_ms" default:"100" validate:"min=0"`
	Debug       bool          `json:"debug"`
}

// Default returns an HTTPClientConfig populated entirely from its struct
// tag defaults.
func Default() (*HTTPClientConfig, error) {
	cfg := &HTTPClientConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply default values: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// FromMap starts from Default() and decodes raw on top of it — raw is
// typically a document's own "http_client" settings block, already decoded
// by internal/docload from YAML/JSON. String durations ("30s") and loosely
// typed numbers are coerced via mapstructure's decode hooks, matching the
// teacher's own mapToStruct convention.
func FromMap(raw map[string]any) (*HTTPClientConfig, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  cfg,
		TagName: "json",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode http client config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ToClientConfig adapts the document-facing shape to internal/httpclient's
// runtime Config.
func (c *HTTPClientConfig) ToClientConfig() httpclient.Config {
	return httpclient.Config{
		Timeout:     c.Timeout,
		MaxRetries:  c.MaxRetries,
		RetryWaitMS: c.RetryWaitMS,
		Debug:       c.Debug,
	}
}
