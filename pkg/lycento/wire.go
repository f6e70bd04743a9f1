package lycento

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Wire shapes exchanged with the license server. They are kept private and
// converted field by field into the exported domain types below.

// -------- requests

type activateRequest struct {
	LicenseKey     string `json:"license_key"`
	DeviceID       string `json:"device_id"`
	DeviceName     string `json:"device_name"`
	DevicePlatform string `json:"device_platform"`
	IPAddress      string `json:"ip_address,omitempty"`
}

type deviceRequest struct {
	LicenseKey string `json:"license_key"`
	DeviceID   string `json:"device_id"`
}

// -------- responses

type wireLicense struct {
	Key           string  `json:"key"`
	Status        string  `json:"status"`
	Type          string  `json:"type"`
	ExpiresAt     *string `json:"expires_at"`
	MaxDevices    int     `json:"max_devices"`
	ActiveDevices int     `json:"active_devices"`
}

type wireActivation struct {
	ID              int64   `json:"id"`
	DeviceID        string  `json:"device_id"`
	DeviceName      string  `json:"device_name"`
	DevicePlatform  string  `json:"device_platform"`
	ActivatedAt     string  `json:"activated_at"`
	LastValidatedAt string  `json:"last_validated_at"`
	DeactivatedAt   *string `json:"deactivated_at"`
	IsActive        bool    `json:"is_active"`
}

type activateResponse struct {
	Success    bool            `json:"success"`
	License    *wireLicense    `json:"license"`
	Activation *wireActivation `json:"activation"`
}

type validateResponse struct {
	Valid      bool            `json:"valid"`
	License    *wireLicense    `json:"license"`
	Activation *wireActivation `json:"activation"`
}

type deactivateResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Activation *wireActivation `json:"activation"`
}

type infoResponse struct {
	License     *wireLicense      `json:"license"`
	Activations *[]wireActivation `json:"activations"`
}

var (
	errMissingLicense     = errors.New("response has no license")
	errMissingActivation  = errors.New("response has no activation")
	errMissingActivations = errors.New("response has no activations")
)

// -------- mapping

func toActivateResult(w *activateResponse) (*ActivateResult, error) {
	lic, err := toLicense(w.License)
	if err != nil {
		return nil, err
	}
	if w.Activation == nil {
		return nil, errMissingActivation
	}
	activatedAt, err := parseTimestamp("activated_at", w.Activation.ActivatedAt)
	if err != nil {
		return nil, err
	}

	return &ActivateResult{
		Success: w.Success,
		License: lic,
		Activation: Activation{
			ID:             w.Activation.ID,
			DeviceID:       w.Activation.DeviceID,
			DeviceName:     w.Activation.DeviceName,
			DevicePlatform: w.Activation.DevicePlatform,
			ActivatedAt:    activatedAt,
		},
	}, nil
}

func toValidateResult(w *validateResponse) (*ValidateResult, error) {
	lic, err := toLicense(w.License)
	if err != nil {
		return nil, err
	}

	result := &ValidateResult{
		Valid:   w.Valid,
		License: lic,
	}
	if w.Activation == nil {
		return result, nil
	}

	lastValidatedAt, err := parseTimestamp("last_validated_at", w.Activation.LastValidatedAt)
	if err != nil {
		return nil, err
	}
	result.Activation = &ValidatedActivation{
		ID:              w.Activation.ID,
		DeviceID:        w.Activation.DeviceID,
		DeviceName:      w.Activation.DeviceName,
		DevicePlatform:  w.Activation.DevicePlatform,
		LastValidatedAt: lastValidatedAt,
	}
	return result, nil
}

func toDeactivateResult(w *deactivateResponse) (*DeactivateResult, error) {
	if w.Activation == nil {
		return nil, errMissingActivation
	}
	deactivatedAt, err := parseOptionalTimestamp("deactivated_at", w.Activation.DeactivatedAt)
	if err != nil {
		return nil, err
	}

	result := &DeactivateResult{
		Success: w.Success,
		Message: w.Message,
		Activation: DeactivatedActivation{
			ID:       w.Activation.ID,
			DeviceID: w.Activation.DeviceID,
		},
	}
	if deactivatedAt != nil {
		result.Activation.DeactivatedAt = *deactivatedAt
	}
	return result, nil
}

func toLicenseInfo(w *infoResponse) (*LicenseInfo, error) {
	lic, err := toLicense(w.License)
	if err != nil {
		return nil, err
	}
	if w.Activations == nil {
		return nil, errMissingActivations
	}

	wireList := *w.Activations
	activations := make([]ActivationEntry, 0, len(wireList))
	for i, a := range wireList {
		entry, err := toActivationEntry(a)
		if err != nil {
			return nil, fmt.Errorf("activation %d: %w", i, err)
		}
		activations = append(activations, entry)
	}

	return &LicenseInfo{
		License: LicenseDetails{
			License:       lic,
			ActiveDevices: w.License.ActiveDevices,
		},
		Activations: activations,
	}, nil
}

func toLicense(w *wireLicense) (License, error) {
	if w == nil {
		return License{}, errMissingLicense
	}
	expiresAt, err := parseOptionalTimestamp("expires_at", w.ExpiresAt)
	if err != nil {
		return License{}, err
	}

	return License{
		Key:        w.Key,
		Status:     w.Status,
		Type:       w.Type,
		ExpiresAt:  expiresAt,
		MaxDevices: w.MaxDevices,
	}, nil
}

func toActivationEntry(w wireActivation) (ActivationEntry, error) {
	activatedAt, err := parseTimestamp("activated_at", w.ActivatedAt)
	if err != nil {
		return ActivationEntry{}, err
	}
	deactivatedAt, err := parseOptionalTimestamp("deactivated_at", w.DeactivatedAt)
	if err != nil {
		return ActivationEntry{}, err
	}

	return ActivationEntry{
		ID:             w.ID,
		DeviceID:       w.DeviceID,
		DeviceName:     w.DeviceName,
		DevicePlatform: w.DevicePlatform,
		ActivatedAt:    activatedAt,
		DeactivatedAt:  deactivatedAt,
		IsActive:       w.IsActive,
	}, nil
}

// timestampLayouts are tried in order when parsing server timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999-0700",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses a server timestamp. An empty value yields the zero
// time.
func parseTimestamp(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %s: unrecognized timestamp %q", field, value)
}

// parseOptionalTimestamp parses a nullable server timestamp. Null and empty
// values yield nil.
func parseOptionalTimestamp(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
