package model

import (
	"encoding/json"
	"io"
	"os"

	"github.com/wippyai/handlegen/errors"
)

// Decode reads a JSON command model and validates it.
func Decode(r io.Reader) (*Model, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var m Model
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidModel, err, "decode command model")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads and validates a JSON command model from path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "open "+path)
	}
	defer f.Close()
	return Decode(f)
}
