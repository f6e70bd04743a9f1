// Package device derives a stable per-machine identifier and descriptive
// metadata used to tag license activations.
//
// The identifier is a SHA-256 digest of the home directory, hostname, OS name
// and first CPU model, truncated to 32 hex characters. It is recomputed on
// every call; identical machine state always yields the same value.
package device

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// IDLength is the number of hex characters in a device ID.
const IDLength = 32

// Descriptor identifies and describes the current machine.
type Descriptor struct {
	DeviceID        string   `json:"deviceId"`
	DeviceName      string   `json:"deviceName"`
	Platform        Platform `json:"platform"`
	PlatformVersion string   `json:"platformVersion"`
	Architecture    string   `json:"architecture"`
}

// ResolverConfig holds configuration for a Resolver. The zero value reads
// the running host.
type ResolverConfig struct {
	// Probe supplies machine facts (default: SystemProbe).
	Probe Probe
	// Namer supplies the display name on macOS (default: ScutilNamer on
	// macOS, HostnameNamer elsewhere).
	Namer  Namer
	Logger zerolog.Logger
}

// Resolver computes device descriptors. It holds no state between calls and
// is safe for concurrent use.
type Resolver struct {
	probe  Probe
	namer  Namer
	logger zerolog.Logger
}

// NewResolver creates a new device resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := &Resolver{
		probe:  cfg.Probe,
		namer:  cfg.Namer,
		logger: cfg.Logger.With().Str("component", "device_resolver").Logger(),
	}
	if r.probe == nil {
		r.probe = SystemProbe{}
	}
	if r.namer == nil {
		r.namer = defaultNamer(runtime.GOOS)
	}
	return r
}

// DeviceID returns the fingerprint of the current machine.
func (r *Resolver) DeviceID(ctx context.Context) string {
	return Fingerprint(r.probe.Facts(ctx))
}

// Info returns the full descriptor of the current machine. It never fails:
// a failed display-name lookup falls back to the hostname.
func (r *Resolver) Info(ctx context.Context) Descriptor {
	facts := r.probe.Facts(ctx)

	return Descriptor{
		DeviceID:        Fingerprint(facts),
		DeviceName:      r.deviceName(ctx, facts),
		Platform:        ClassifyPlatform(facts.OS),
		PlatformVersion: facts.KernelVersion,
		Architecture:    facts.Arch,
	}
}

func (r *Resolver) deviceName(ctx context.Context, facts Facts) string {
	switch facts.OS {
	case "windows":
		if facts.Username == "" {
			return facts.Hostname
		}
		return facts.Username + "-" + facts.Hostname
	case "darwin":
		name, err := r.namer.ComputerName(ctx)
		if err != nil {
			r.logger.Debug().Err(err).Msg("computer name lookup failed, using hostname")
			return facts.Hostname
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return facts.Hostname
		}
		return name
	default:
		return facts.Hostname
	}
}

func defaultNamer(goos string) Namer {
	if goos == "darwin" {
		return ScutilNamer{}
	}
	return HostnameNamer{}
}

// Fingerprint hashes machine facts into a device ID of IDLength hex
// characters.
func Fingerprint(f Facts) string {
	cpuModel := f.CPUModel
	if cpuModel == "" {
		cpuModel = "unknown"
	}

	data := strings.Join([]string{f.HomeDir, f.Hostname, fingerprintOS(f.OS), cpuModel}, "-")
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:IDLength]
}

// fingerprintOS returns the OS name used in the fingerprint input. Windows
// hosts are hashed as "win32" so IDs match the other Lycento SDKs.
func fingerprintOS(goos string) string {
	if goos == "windows" {
		return "win32"
	}
	return goos
}

var defaultResolver = NewResolver(ResolverConfig{Logger: zerolog.Nop()})

// ID returns the device ID of the running host.
func ID(ctx context.Context) string {
	return defaultResolver.DeviceID(ctx)
}

// Info returns the descriptor of the running host.
func Info(ctx context.Context) Descriptor {
	return defaultResolver.Info(ctx)
}

// CurrentPlatform returns the platform of the running binary.
func CurrentPlatform() Platform {
	return ClassifyPlatform(runtime.GOOS)
}
