package lycento

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339", value: "2026-10-14T09:30:00Z", want: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)},
		{name: "microseconds", value: "2026-10-14T09:30:00.123456Z", want: time.Date(2026, 10, 14, 9, 30, 0, 123456000, time.UTC)},
		{name: "offset without colon", value: "2024-01-15T10:30:00+0000", want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{name: "offset without colon and fraction", value: "2024-01-15T12:30:00.25+0200", want: time.Date(2024, 1, 15, 10, 30, 0, 250000000, time.UTC)},
		{name: "no zone", value: "2026-10-14T09:30:00.5", want: time.Date(2026, 10, 14, 9, 30, 0, 500000000, time.UTC)},
		{name: "sql datetime", value: "2026-10-14 09:30:00", want: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)},
		{name: "date only", value: "2026-10-14", want: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)},
		{name: "empty", value: "", want: time.Time{}},
		{name: "garbage", value: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp("activated_at", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "activated_at")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseOptionalTimestamp(t *testing.T) {
	got, err := parseOptionalTimestamp("expires_at", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	empty := ""
	got, err = parseOptionalTimestamp("expires_at", &empty)
	require.NoError(t, err)
	assert.Nil(t, got)

	value := "2027-01-01T00:00:00Z"
	got, err = parseOptionalTimestamp("expires_at", &value)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2027, got.Year())
}

func TestToLicenseInfo_FieldMapping(t *testing.T) {
	var w infoResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"license": {"key": "K", "status": "active", "type": "subscription",
			"expires_at": "2027-06-30T00:00:00Z", "max_devices": 4, "active_devices": 1, "owner": "ignored"},
		"activations": [{"id": 9, "device_id": "d", "device_name": "n", "device_platform": "ios",
			"activated_at": "2026-01-01T00:00:00Z", "deactivated_at": null, "is_active": true, "extra": 1}]
	}`), &w))

	info, err := toLicenseInfo(&w)
	require.NoError(t, err)

	assert.Equal(t, "K", info.License.Key)
	assert.Equal(t, "active", info.License.Status)
	assert.Equal(t, "subscription", info.License.Type)
	assert.Equal(t, 4, info.License.MaxDevices)
	assert.Equal(t, 1, info.License.ActiveDevices)
	require.NotNil(t, info.License.ExpiresAt)

	require.Len(t, info.Activations, 1)
	a := info.Activations[0]
	assert.Equal(t, int64(9), a.ID)
	assert.Equal(t, "d", a.DeviceID)
	assert.Equal(t, "n", a.DeviceName)
	assert.Equal(t, "ios", a.DevicePlatform)
	assert.True(t, a.IsActive)
	assert.Nil(t, a.DeactivatedAt)
}

func TestToLicenseInfo_MissingActivations(t *testing.T) {
	_, err := toLicenseInfo(&infoResponse{License: &wireLicense{Key: "K"}})
	assert.ErrorIs(t, err, errMissingActivations)
}

func TestToActivateResult_MissingActivation(t *testing.T) {
	_, err := toActivateResult(&activateResponse{Success: true, License: &wireLicense{Key: "K"}})
	assert.ErrorIs(t, err, errMissingActivation)
}

func TestToActivationEntry_BadTimestamp(t *testing.T) {
	_, err := toActivationEntry(wireActivation{ActivatedAt: "not a date"})
	assert.Error(t, err)
}

func TestActivateRequest_OmitsEmptyIP(t *testing.T) {
	data, err := json.Marshal(activateRequest{LicenseKey: "K", DeviceID: "d", DeviceName: "n", DevicePlatform: "linux"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"license_key":"K","device_id":"d","device_name":"n","device_platform":"linux"}`, string(data))
}
