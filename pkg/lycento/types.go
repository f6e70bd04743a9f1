package lycento

import (
	"time"

	"github.com/lycento/lycento-go/pkg/device"
)

// ActivateOptions are the inputs to Activate. Empty device fields are
// resolved from the current machine.
type ActivateOptions struct {
	LicenseKey     string
	DeviceID       string
	DeviceName     string
	DevicePlatform device.Platform
	IPAddress      string
}

// ValidateOptions are the inputs to Validate. An empty DeviceID is resolved
// from the current machine.
type ValidateOptions struct {
	LicenseKey string
	DeviceID   string
}

// DeactivateOptions are the inputs to Deactivate. DeviceID is required and
// never resolved automatically: deactivation targets an already registered
// device.
type DeactivateOptions struct {
	LicenseKey string
	DeviceID   string
}

// License summarizes a license as returned by activate and validate.
type License struct {
	Key        string     `json:"key"`
	Status     string     `json:"status"`
	Type       string     `json:"type"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	MaxDevices int        `json:"maxDevices"`
}

// LicenseDetails is the info-lookup variant of License.
type LicenseDetails struct {
	License
	ActiveDevices int `json:"activeDevices"`
}

// Activation is the record created by Activate.
type Activation struct {
	ID             int64     `json:"id"`
	DeviceID       string    `json:"deviceId"`
	DeviceName     string    `json:"deviceName"`
	DevicePlatform string    `json:"devicePlatform"`
	ActivatedAt    time.Time `json:"activatedAt"`
}

// ValidatedActivation is the activation matched by Validate.
type ValidatedActivation struct {
	ID              int64     `json:"id"`
	DeviceID        string    `json:"deviceId"`
	DeviceName      string    `json:"deviceName"`
	DevicePlatform  string    `json:"devicePlatform"`
	LastValidatedAt time.Time `json:"lastValidatedAt"`
}

// DeactivatedActivation is the activation closed by Deactivate.
type DeactivatedActivation struct {
	ID            int64     `json:"id"`
	DeviceID      string    `json:"deviceId"`
	DeactivatedAt time.Time `json:"deactivatedAt"`
}

// ActivationEntry is one element of a license's activation history.
type ActivationEntry struct {
	ID             int64      `json:"id"`
	DeviceID       string     `json:"deviceId"`
	DeviceName     string     `json:"deviceName"`
	DevicePlatform string     `json:"devicePlatform"`
	ActivatedAt    time.Time  `json:"activatedAt"`
	DeactivatedAt  *time.Time `json:"deactivatedAt"`
	IsActive       bool       `json:"isActive"`
}

// ActivateResult is returned by Activate.
type ActivateResult struct {
	Success    bool       `json:"success"`
	License    License    `json:"license"`
	Activation Activation `json:"activation"`
}

// ValidateResult is returned by Validate. Activation is nil when the license
// is invalid or no activation matches the device.
type ValidateResult struct {
	Valid      bool                 `json:"valid"`
	License    License              `json:"license"`
	Activation *ValidatedActivation `json:"activation"`
}

// DeactivateResult is returned by Deactivate.
type DeactivateResult struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Activation DeactivatedActivation `json:"activation"`
}

// LicenseInfo is returned by GetInfo. Activations keep the server's order.
type LicenseInfo struct {
	License     LicenseDetails    `json:"license"`
	Activations []ActivationEntry `json:"activations"`
}
