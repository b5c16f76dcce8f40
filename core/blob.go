package core

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Blob keys
const (
	KeyStudents    = "students"
	KeyPayments    = "payments"
	KeyFeeConfig   = "feeConfig"
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
)

// BlobStore is the durable mirror of the in-memory collections: a string-keyed store of JSON documents.
type BlobStore interface {
	// Get returns the value stored under key; ok is false when nothing is stored.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}

// LoadJSON decodes the blob stored under key into dest. found is false (and dest untouched) when the key is absent.
func LoadJSON(store BlobStore, key string, dest interface{}) (found bool, err error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return false, errors.Wrapf(err, "reading %q", key)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, errors.Wrapf(err, "decoding %q", key)
	}
	return true, nil
}

// SaveJSON encodes value and stores it under key.
func SaveJSON(store BlobStore, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return errors.Wrapf(store.Set(key, string(data)), "writing %q", key)
}
