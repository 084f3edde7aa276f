package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/converse"
)

// MarshalHistory serializes a History in the v1 envelope format.
func MarshalHistory(h converse.History) ([]byte, error) {
	env := envelope{
		Version:   envelopeVersion,
		ID:        h.ID,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
		Exchanges: make([]exchangeDTO, len(h.Exchanges)),
	}
	for i, e := range h.Exchanges {
		dto := exchangeDTO{
			ID:         e.ID,
			Transcript: e.Transcript,
			Response:   e.Response,
			AudioBytes: e.AudioBytes,
			CreatedAt:  e.CreatedAt,
		}
		if e.AudioFile != "" {
			ref := e.AudioFile
			dto.AudioFile = &ref
		}
		env.Exchanges[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalHistory deserializes a History from the v1 envelope format.
func UnmarshalHistory(data []byte) (converse.History, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return converse.History{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return converse.History{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	h := converse.History{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
	}
	for _, dto := range env.Exchanges {
		var ref string
		if dto.AudioFile != nil {
			ref = *dto.AudioFile
		}
		h.Exchanges = append(h.Exchanges, converse.Exchange{
			ID:         dto.ID,
			Transcript: dto.Transcript,
			Response:   dto.Response,
			AudioFile:  ref,
			AudioBytes: dto.AudioBytes,
			CreatedAt:  dto.CreatedAt,
		})
	}
	return h, nil
}

// Save writes a History to path atomically, creating parent directories as
// needed.
func Save(path string, h converse.History) error {
	data, err := MarshalHistory(h)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a History from path.
func Load(path string) (converse.History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return converse.History{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalHistory(data)
}

// LoadOrNew reads the History at path, or returns fresh when no file exists
// yet.
func LoadOrNew(path string, fresh converse.History) (converse.History, error) {
	h, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fresh, nil
	}
	return h, err
}
