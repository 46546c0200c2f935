// Package server loads the tracerd configuration file.
package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models/dummy"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models/httpapi"
)

var (
	ErrInvalidModel    = errors.New("server config: model entry is invalid")
	ErrInvalidHomology = errors.New("server config: homology entry is invalid")
)

type ModelKind string

const (
	KindGenerator ModelKind = "generator"
	KindEmbedder  ModelKind = "embedder"
)

type ModelBackend string

const (
	// BackendDummy: deterministic in-process fakes, for smoke tests
	// and local development.
	BackendDummy ModelBackend = "dummy"

	// BackendHTTP: a model served over the JSON inference protocol.
	BackendHTTP ModelBackend = "http"
)

type Model struct {
	Name     string
	Kind     ModelKind
	Backend  ModelBackend
	Modality domain.Modality

	// URL of the inference endpoint. Required for BackendHTTP.
	URL string

	// APIKeyEnv names the environment variable carrying the bearer
	// token of the endpoint, so keys stay out of the config file.
	APIKeyEnv string

	// Dim: vector length of the dummy embedder.
	Dim int

	Slots         int
	RatePerSecond float64
}

func (m *Model) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Name          string  `yaml:"name"`
		Kind          string  `yaml:"kind"`
		Backend       string  `yaml:"backend"`
		Modality      string  `yaml:"modality,omitempty"`
		URL           string  `yaml:"url,omitempty"`
		APIKeyEnv     string  `yaml:"api_key_env,omitempty"`
		Dim           int     `yaml:"dim,omitempty"`
		Slots         int     `yaml:"slots,omitempty"`
		RatePerSecond float64 `yaml:"rate_per_second,omitempty"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidModel)
	}

	switch ModelKind(raw.Kind) {
	case KindGenerator:
		switch domain.Modality(raw.Modality) {
		case domain.Text, domain.Image:
		default:
			return fmt.Errorf(
				`%w: modality of generator %s should be "text" or "image"`,
				ErrInvalidModel, raw.Name,
			)
		}
	case KindEmbedder:
		if raw.Modality != "" {
			return fmt.Errorf(
				"%w: embedder %s should not declare a modality",
				ErrInvalidModel, raw.Name,
			)
		}
	default:
		return fmt.Errorf(
			`%w: kind of %s should be "generator" or "embedder"`,
			ErrInvalidModel, raw.Name,
		)
	}

	switch ModelBackend(raw.Backend) {
	case BackendDummy:
	case BackendHTTP:
		if raw.URL == "" {
			return fmt.Errorf(
				"%w: http model %s needs a url", ErrInvalidModel, raw.Name,
			)
		}
	default:
		return fmt.Errorf(
			`%w: backend of %s should be "dummy" or "http"`,
			ErrInvalidModel, raw.Name,
		)
	}

	m.Name = raw.Name
	m.Kind = ModelKind(raw.Kind)
	m.Backend = ModelBackend(raw.Backend)
	m.Modality = domain.Modality(raw.Modality)
	m.URL = raw.URL
	m.APIKeyEnv = raw.APIKeyEnv
	m.Dim = raw.Dim
	m.Slots = raw.Slots
	m.RatePerSecond = raw.RatePerSecond
	return nil
}

// Duration accepts Go duration strings ("300s", "5m") in yaml.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type Homology struct {
	Command      string   `yaml:"command"`
	Args         []string `yaml:"args,omitempty"`
	MaxDimension int      `yaml:"max_dimension,omitempty"`
}

type Config struct {
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Loglevel string `yaml:"loglevel,omitempty"`

	// TokenKey is the base64-encoded HMAC key signing experiment
	// submission tokens. Empty leaves submissions open.
	TokenKey string `yaml:"token_key,omitempty"`

	RunConcurrency int      `yaml:"run_concurrency,omitempty"`
	StepTimeout    Duration `yaml:"step_timeout,omitempty"`

	Homology *Homology `yaml:"homology,omitempty"`
	Models   []Model   `yaml:"models"`
}

func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	c := Config{}
	if err := yaml.Unmarshal(content, &c); err != nil {
		return Config{}, err
	}
	if c.Homology != nil && c.Homology.Command == "" {
		return Config{}, fmt.Errorf("%w: command is empty", ErrInvalidHomology)
	}
	return c, nil
}

// TokenKeyBytes decodes the signing key. Empty config yields nil.
func (c Config) TokenKeyBytes() ([]byte, error) {
	if c.TokenKey == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(c.TokenKey)
}

// BuildRegistry binds the configured models to their backends.
func (c Config) BuildRegistry() (*models.Registry, error) {
	registry := models.NewRegistry()

	for _, m := range c.Models {
		capacity := models.Capacity{Slots: m.Slots, RatePerSecond: m.RatePerSecond}

		switch m.Kind {
		case KindGenerator:
			gen, err := buildGenerator(m)
			if err != nil {
				return nil, err
			}
			if err := registry.AddGenerator(m.Name, gen, capacity); err != nil {
				return nil, err
			}
		case KindEmbedder:
			emb, err := buildEmbedder(m)
			if err != nil {
				return nil, err
			}
			if err := registry.AddEmbedder(m.Name, emb, capacity); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}

func buildGenerator(m Model) (models.Generator, error) {
	switch m.Backend {
	case BackendHTTP:
		client := httpapi.New(m.URL, os.Getenv(m.APIKeyEnv))
		return client.Generator(m.Name, m.Modality), nil
	case BackendDummy:
		switch m.Modality {
		case domain.Image:
			return dummy.T2I{}, nil
		case domain.Text:
			return dummy.I2T{}, nil
		}
	}
	return nil, fmt.Errorf("%w: no backend for generator %s", ErrInvalidModel, m.Name)
}

func buildEmbedder(m Model) (models.Embedder, error) {
	switch m.Backend {
	case BackendHTTP:
		client := httpapi.New(m.URL, os.Getenv(m.APIKeyEnv))
		return client.Embedder(m.Name), nil
	case BackendDummy:
		return dummy.Embedder{Dim: m.Dim}, nil
	}
	return nil, fmt.Errorf("%w: no backend for embedder %s", ErrInvalidModel, m.Name)
}
