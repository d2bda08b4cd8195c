package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalResult serializes a Result to pretty-printed JSON bytes.
// The format round-trips through [UnmarshalResult] and is stable across
// runs for identical input, so it doubles as a cache value.
func MarshalResult(r Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalResult deserializes JSON bytes into a Result.
func UnmarshalResult(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("unmarshal layout result: %w", err)
	}
	if r.Nodes == nil {
		r.Nodes = []Node{}
	}
	if r.Connections == nil {
		r.Connections = []Connection{}
	}
	return r, nil
}

// WriteResultFile writes a Result to a JSON file.
func WriteResultFile(r Result, path string) error {
	data, err := MarshalResult(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadResultFile reads a Result from a JSON file.
func ReadResultFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalResult(data)
}
