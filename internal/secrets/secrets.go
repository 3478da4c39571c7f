// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package secrets resolves provider API keys from the OS keyring so they
// never have to live in plain-text config files.
package secrets

// Store provides secure secret storage operations.
type Store interface {
	// Store saves a secret value under the given service and key.
	Store(service, key, value string) error

	// Retrieve fetches the secret value for the given service and key.
	Retrieve(service, key string) (string, error)

	// Delete removes the secret for the given service and key.
	Delete(service, key string) error
}
