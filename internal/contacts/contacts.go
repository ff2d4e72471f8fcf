// Package contacts loads an optional alias table mapping raw message
// senders (phone numbers, email addresses) to display names.
package contacts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML mapping of sender identifier to display name:
//
//	"+15551234567": Casey
//	me@example.com: Me
func Load(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading contacts file: %w", err)
	}

	aliases := make(map[string]string)
	if err := yaml.Unmarshal(content, &aliases); err != nil {
		return nil, fmt.Errorf("parsing contacts file %s: %w", path, err)
	}
	return aliases, nil
}
