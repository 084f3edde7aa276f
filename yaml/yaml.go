// Package yaml loads converse configuration files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fwojciec/converse"
	"gopkg.in/yaml.v3"
)

type configDTO struct {
	BackendURL     string        `yaml:"backend_url"`
	Transport      string        `yaml:"transport"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Capture        captureDTO    `yaml:"capture"`
	Playback       playbackDTO   `yaml:"playback"`
	Logging        loggingDTO    `yaml:"logging"`
	HistoryPath    string        `yaml:"history_path"`
}

type captureDTO struct {
	Command       []string `yaml:"command"`
	SampleRate    int      `yaml:"sample_rate"`
	Channels      int      `yaml:"channels"`
	BitDepth      int      `yaml:"bit_depth"`
	FragmentBytes int      `yaml:"fragment_bytes"`
}

type playbackDTO struct {
	Command []string `yaml:"command"`
}

type loggingDTO struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func fromConfig(c converse.Config) configDTO {
	return configDTO{
		BackendURL:     c.BackendURL,
		Transport:      c.Transport,
		RequestTimeout: c.RequestTimeout,
		Capture: captureDTO{
			Command:       c.Capture.Command,
			SampleRate:    c.Capture.SampleRate,
			Channels:      c.Capture.Channels,
			BitDepth:      c.Capture.BitDepth,
			FragmentBytes: c.Capture.FragmentBytes,
		},
		Playback:    playbackDTO{Command: c.Playback.Command},
		Logging:     loggingDTO{Level: c.Logging.Level, File: c.Logging.File},
		HistoryPath: c.HistoryPath,
	}
}

func (d configDTO) config() converse.Config {
	return converse.Config{
		BackendURL:     d.BackendURL,
		Transport:      d.Transport,
		RequestTimeout: d.RequestTimeout,
		Capture: converse.CaptureConfig{
			Command:       d.Capture.Command,
			SampleRate:    d.Capture.SampleRate,
			Channels:      d.Capture.Channels,
			BitDepth:      d.Capture.BitDepth,
			FragmentBytes: d.Capture.FragmentBytes,
		},
		Playback:    converse.PlaybackConfig{Command: d.Playback.Command},
		Logging:     converse.LoggingConfig{Level: d.Logging.Level, File: d.Logging.File},
		HistoryPath: d.HistoryPath,
	}
}

// Load reads the file at path over base and validates the result. Keys the
// file omits keep their value from base. Unknown keys are rejected.
func Load(path string, base converse.Config) (converse.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return converse.Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	cfg, err := Parse(data, base)
	if err != nil {
		return converse.Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over base and validates the result.
func Parse(data []byte, base converse.Config) (converse.Config, error) {
	dto := fromConfig(base)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		return converse.Config{}, fmt.Errorf("parse: %w", err)
	}
	cfg := dto.config()
	if err := cfg.Validate(); err != nil {
		return converse.Config{}, err
	}
	return cfg, nil
}

// Marshal renders cfg in the file format Load reads.
func Marshal(cfg converse.Config) ([]byte, error) {
	return yaml.Marshal(fromConfig(cfg))
}
