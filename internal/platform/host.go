// Host information via gopsutil.
package platform

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
)

// HostPlatform reads host facts through gopsutil.
type HostPlatform struct{}

// New creates a platform backed by gopsutil.
func New() Platform {
	return &HostPlatform{}
}

// Name returns the operating system gopsutil reports.
func (p *HostPlatform) Name() string {
	info, err := host.Info()
	if err != nil || info.OS == "" {
		return "unknown"
	}
	return info.OS
}

// Hostname returns the host name reported by the OS.
func (p *HostPlatform) Hostname(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", err
	}
	return info.Hostname, nil
}
