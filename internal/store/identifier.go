// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package store

import (
	"fmt"
	"regexp"
	"strings"
)

// identPattern matches a SQL-safe bare identifier: a leading letter or
// underscore followed by letters, digits, or underscores.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MaxIdentifierLen caps identifier length well below any backend limit.
const MaxIdentifierLen = 64

// ValidateIdentifier checks that name is safe to splice into SQL text as a
// bare identifier. Store ids become table names and metadata filter keys
// become JSON path fragments, so both must pass this check before any
// dynamic interpolation. Values passed as bound parameters never need it.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier: %w", ErrInvalidInput)
	}
	if len(name) > MaxIdentifierLen {
		return fmt.Errorf("identifier %q exceeds %d bytes: %w", name, MaxIdentifierLen, ErrInvalidInput)
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("unsafe identifier %q: %w", name, ErrInvalidInput)
	}
	// sqlite_ is reserved for SQLite internal objects.
	if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return fmt.Errorf("identifier %q uses reserved prefix: %w", name, ErrInvalidInput)
	}
	return nil
}
