package socketio

import (
	"os"
	"strings"

	"github.com/edumarques81/stellar-shuffle/internal/version"
)

// SystemInfo describes the player device for the getSystemInfo event.
type SystemInfo struct {
	ID            string `json:"id"`
	Host          string `json:"host"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	ServiceName   string `json:"serviceName"`
	SystemVersion string `json:"systemversion"`
	BuildDate     string `json:"builddate"`
	Hardware      string `json:"hardware"`
}

// cpuInfoPath is read for the hardware model.
var cpuInfoPath = "/proc/cpuinfo"

// GetSystemInfo returns basic system information.
func GetSystemInfo() SystemInfo {
	v := version.GetInfo()
	info := SystemInfo{
		Name:          v.Name,
		Type:          "shuffle_player",
		ServiceName:   "stellar-shuffle",
		SystemVersion: v.Version,
		BuildDate:     v.BuildTime,
		Hardware:      "unknown",
	}

	if hostname, err := os.Hostname(); err == nil {
		info.Host = hostname
		info.ID = hostname
	}

	if data, err := os.ReadFile(cpuInfoPath); err == nil {
		if model := hardwareModel(string(data)); model != "" {
			info.Hardware = model
		}
	}

	return info
}

// hardwareModel extracts the "Model" line of /proc/cpuinfo (set on Raspberry Pi boards).
func hardwareModel(cpuinfo string) string {
	for _, line := range strings.Split(cpuinfo, "\n") {
		if !strings.HasPrefix(line, "Model") {
			continue
		}
		if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
