// Package platform resolves facts about the host the reporter runs on.
// Today that is only the device identity used to namespace MQTT topics.
package platform

import (
	"context"
	"fmt"
	"strings"
)

// Platform provides host information.
type Platform interface {
	// Hostname returns the host's name.
	Hostname(ctx context.Context) (string, error)

	// Name returns the platform name (linux, darwin, ...).
	Name() string
}

// DeviceIdentity returns override if set, otherwise the host name.
// The result is used verbatim in topics, so MQTT wildcards and the topic
// separator are rejected.
func DeviceIdentity(ctx context.Context, p Platform, override string) (string, error) {
	device := strings.TrimSpace(override)
	if device == "" {
		name, err := p.Hostname(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve hostname: %w", err)
		}
		device = strings.TrimSpace(name)
	}
	if device == "" {
		return "", fmt.Errorf("device identity is empty")
	}
	if strings.ContainsAny(device, "/+#") {
		return "", fmt.Errorf("device identity %q contains MQTT topic characters", device)
	}
	return device, nil
}
