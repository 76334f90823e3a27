package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// GetJSON decodes the value stored under key into out.
// found is false (with a nil error) when the key is absent.
func GetJSON(s Store, key string, out any) (found bool, err error) {
	b, err := s.Get(key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Put(key, b)
}
