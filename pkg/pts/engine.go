// Package pts implements the measurement engine used during
// attestation: file and directory hash measurements, platform
// identification, and comparison of live evidence against reference
// values.
package pts

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Engine computes measurements for one attestation connection. Each
// connection's state tracker owns exactly one Engine; it is created
// with the tracker and released with it.
type Engine struct {
	platformInfo string
	algorithm    Algorithm
}

// New creates an engine with the detected platform info and SHA-256
// measurements.
func New() *Engine {
	return &Engine{
		platformInfo: DetectPlatformInfo(),
		algorithm:    AlgSHA256,
	}
}

// SetPlatformInfo overrides the platform-info string, normally from
// host configuration.
func (e *Engine) SetPlatformInfo(info string) {
	e.platformInfo = info
}

// PlatformInfo returns the platform-info string sent to the endpoint
// during the handshake.
func (e *Engine) PlatformInfo() string {
	return e.platformInfo
}

// SetAlgorithm selects the hash algorithm for subsequent measurements.
func (e *Engine) SetAlgorithm(alg Algorithm) error {
	if alg.hashSize() == 0 {
		return fmt.Errorf("unsupported measurement algorithm: %s", alg)
	}
	e.algorithm = alg
	return nil
}

// Algorithm returns the currently selected hash algorithm.
func (e *Engine) Algorithm() Algorithm {
	return e.algorithm
}

// DetectPlatformInfo builds a platform identification string from the
// OS release name and kernel version, e.g.
// "Ubuntu 24.04.1 LTS 6.8.0-41-generic". Fields that cannot be
// determined are left out; the result may be empty on exotic hosts.
func DetectPlatformInfo() string {
	var parts []string
	if name := osReleaseName(); name != "" {
		parts = append(parts, name)
	}
	if kernel := kernelVersion(); kernel != "" {
		parts = append(parts, kernel)
	}
	if len(parts) == 0 {
		return runtime.GOOS
	}
	return strings.Join(parts, " ")
}

// osReleaseName reads the PRETTY_NAME from /etc/os-release.
func osReleaseName() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			value := strings.TrimPrefix(line, "PRETTY_NAME=")
			return strings.Trim(value, "\"")
		}
	}
	return ""
}

// kernelVersion runs uname -r to get the kernel version.
func kernelVersion() string {
	out, err := exec.Command("uname", "-r").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
