package device

import (
	"fmt"
	"strings"
)

// Platform is the device platform reported to the license server.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformUnknown Platform = "unknown"
)

// ValidPlatforms returns all platforms the license server accepts.
func ValidPlatforms() []Platform {
	return []Platform{
		PlatformWindows,
		PlatformMacOS,
		PlatformLinux,
		PlatformAndroid,
		PlatformIOS,
		PlatformUnknown,
	}
}

// IsValid checks if the platform is a recognized value.
func (p Platform) IsValid() bool {
	for _, valid := range ValidPlatforms() {
		if p == valid {
			return true
		}
	}
	return false
}

// ParsePlatform converts a user-supplied string to a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown platform: %s", s)
	}
	return p, nil
}

// ClassifyPlatform maps a GOOS value to a Platform. Unrecognized values map
// to PlatformUnknown.
func ClassifyPlatform(goos string) Platform {
	switch strings.ToLower(goos) {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMacOS
	case "linux":
		return PlatformLinux
	case "android":
		return PlatformAndroid
	case "ios":
		return PlatformIOS
	default:
		return PlatformUnknown
	}
}
