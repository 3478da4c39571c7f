// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"

	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// Compile-time interface check.
var _ Store = (*KeyringStore)(nil)

// KeyringStore implements Store using the OS keyring via zalando/go-keyring.
// On macOS it uses Keychain, on Linux secret-service (D-Bus), and on Windows
// the Credential Manager.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Store(service, key, value string) error {
	if service == "" || key == "" {
		return esterr.New(esterr.CodeSecretInvalidInput, "secret store: service and key must not be empty")
	}

	if err := keyring.Set(service, key, value); err != nil {
		return esterr.Wrapf(err, esterr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return nil
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if service == "" || key == "" {
		return "", esterr.New(esterr.CodeSecretInvalidInput, "secret retrieve: service and key must not be empty")
	}

	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", esterr.Errorf(esterr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", esterr.Wrapf(err, esterr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if service == "" || key == "" {
		return esterr.New(esterr.CodeSecretInvalidInput, "secret delete: service and key must not be empty")
	}

	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return esterr.Errorf(esterr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return esterr.Wrapf(err, esterr.CodeSecretStoreFailure, "deleting secret %s/%s", service, key)
	}
	return nil
}
