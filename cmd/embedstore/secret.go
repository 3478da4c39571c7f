// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embedstore-dev/embedstore/internal/secrets"
)

// serviceName is the keyring service name under which embedstore stores
// secrets. Reference them from config as keyring://embedstore/<name>.
const serviceName = "embedstore"

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets stored in the OS keyring",
		Long:  "Store and delete provider API keys under the embedstore service in the operating system keyring.",
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret, reading its value from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretSet,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret by name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	// Read the value from stdin so it never lands in shell history.
	reader := bufio.NewReader(cmd.InOrStdin())
	value, err := reader.ReadString('\n')
	if err != nil && value == "" {
		return fmt.Errorf("reading secret value: %w", err)
	}
	value = strings.TrimRight(value, "\r\n")

	store := secretStoreFactory()
	if err := store.Store(serviceName, name, value); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret %q. Reference it as keyring://%s/%s\n", name, serviceName, name)
	return err
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	store := secretStoreFactory()
	if err := store.Delete(serviceName, name); err != nil {
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret %q.\n", name)
	return err
}
