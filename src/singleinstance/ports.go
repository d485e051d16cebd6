package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49600
	defaultPortEnd   = 49650

	PortStartEnvVar = "VR_DIMENSION_PORT_START"
	PortEndEnvVar   = "VR_DIMENSION_PORT_END"
)

// getPortRange returns the configured inclusive TCP port range, clamped to
// [1024, 65535]. Unset or non-numeric values fall back to the defaults.
func getPortRange() (int, int) {
	start := envInt(PortStartEnvVar, defaultPortStart)
	end := envInt(PortEndEnvVar, defaultPortEnd)
	if end < start {
		start, end = end, start
	}
	return max(start, 1024), min(end, 65535)
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// PortRange exposes the effective port range for logging.
func PortRange() (int, int) { return getPortRange() }
