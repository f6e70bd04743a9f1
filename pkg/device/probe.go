package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// Facts are the machine characteristics a device identity is derived from.
type Facts struct {
	HomeDir       string
	Hostname      string
	OS            string // GOOS value
	Arch          string // GOARCH value
	CPUModel      string // first CPU's model name, empty if unavailable
	KernelVersion string
	Username      string
}

// Probe reads machine characteristics. Implementations must not fail; any
// fact that cannot be read is left empty.
type Probe interface {
	Facts(ctx context.Context) Facts
}

// Namer looks up the user-configured display name of the machine.
type Namer interface {
	ComputerName(ctx context.Context) (string, error)
}

// SystemProbe reads facts from the running host.
type SystemProbe struct{}

// Facts implements Probe.
func (SystemProbe) Facts(ctx context.Context) Facts {
	f := Facts{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if home, err := os.UserHomeDir(); err == nil {
		f.HomeDir = home
	}

	info, infoErr := host.InfoWithContext(ctx)
	if hostname, err := os.Hostname(); err == nil {
		f.Hostname = hostname
	} else if infoErr == nil {
		f.Hostname = info.Hostname
	}
	if infoErr == nil {
		f.KernelVersion = info.KernelVersion
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		f.CPUModel = strings.TrimSpace(cpus[0].ModelName)
	}

	f.Username = currentUsername()

	return f
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		// Windows reports DOMAIN\user.
		if i := strings.LastIndex(u.Username, `\`); i >= 0 {
			return u.Username[i+1:]
		}
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return os.Getenv("USERNAME")
}

// ScutilNamer reads the macOS ComputerName via scutil.
type ScutilNamer struct {
	// Binary overrides the scutil path (default: "scutil" from PATH).
	Binary string
}

// ComputerName implements Namer.
func (n ScutilNamer) ComputerName(ctx context.Context) (string, error) {
	binary := n.Binary
	if binary == "" {
		binary = "scutil"
	}

	out, err := exec.CommandContext(ctx, binary, "--get", "ComputerName").Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", binary, err)
	}

	name := strings.TrimSpace(string(out))
	if name == "" {
		return "", errors.New("scutil returned an empty ComputerName")
	}
	return name, nil
}

// HostnameNamer reports the OS hostname as the computer name. It runs no
// subprocess and is the default Namer on hosts other than macOS.
type HostnameNamer struct{}

// ComputerName implements Namer.
func (HostnameNamer) ComputerName(context.Context) (string, error) {
	return os.Hostname()
}
