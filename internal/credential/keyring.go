// Package credential stores the webhook access path in the OS keyring.
// The webhook URL embeds a secret token, so it never belongs in a
// plain-text config file; the config field exists only as a fallback
// for environments without a usable keyring backend.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "resreport"

// WebhookKey is the keyring item holding the REST webhook URL.
const WebhookKey = "webhook_url"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/resreport/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("resreport-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// WebhookURL resolves the webhook access path: keyring first, then the
// supplied config fallback. An empty result means the tool is not yet
// configured.
func WebhookURL(fallback string) string {
	if url, err := Get(WebhookKey); err == nil && url != "" {
		return url
	}
	return fallback
}
