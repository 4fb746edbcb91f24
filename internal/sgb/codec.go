package sgb

import (
	"encoding/json"
	"fmt"
)

// Encode serializes v for storage.
func Encode[T any](v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding value: %w", err)
	}
	return string(data), nil
}

// Decode parses data into a T. Empty input yields fallback with no error.
// Malformed input yields fallback and a *DeserializationError.
func Decode[T any](data string, fallback T) (T, error) {
	if data == "" {
		return fallback, nil
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return fallback, &DeserializationError{Err: err}
	}
	return v, nil
}
