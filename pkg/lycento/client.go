// Package lycento is a client for the Lycento license server.
//
// A Client activates, validates and deactivates licenses on a device and
// looks up license details:
//
//	client, err := lycento.New(lycento.Config{BaseURL: "https://tenant.lycento.com"})
//	if err != nil {
//		return err
//	}
//	res, err := client.Activate(ctx, lycento.ActivateOptions{LicenseKey: key})
//
// Every operation issues exactly one HTTP request and never retries. Failures
// are returned as *Error; see Kind for the taxonomy.
package lycento

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lycento/lycento-go/internal/httpclient"
	"github.com/lycento/lycento-go/pkg/device"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds each request when Config.Timeout is unset.
const DefaultTimeout = 10 * time.Second

const (
	pathActivate   = "/api/v1/licenses/activate"
	pathValidate   = "/api/v1/licenses/validate"
	pathDeactivate = "/api/v1/licenses/deactivate"
	pathInfo       = "/api/v1/licenses/info"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Recorder receives one observation per completed operation. outcome is
// "success" or the failing Kind.
type Recorder interface {
	ObserveRequest(operation, outcome string, d time.Duration)
}

// DeviceResolver supplies the identity of the current machine for requests
// that omit device fields.
type DeviceResolver interface {
	DeviceID(ctx context.Context) string
	Info(ctx context.Context) device.Descriptor
}

// Config holds configuration for the client. It is copied by New and cannot
// change afterwards.
type Config struct {
	// BaseURL of the license server, e.g. https://tenant.lycento.com. A
	// trailing slash is removed.
	BaseURL string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Timeout bounds each request (default: 10s). Ignored when HTTPClient is
	// set.
	Timeout time.Duration
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// Logger receives debug logs; the zero value discards them.
	Logger zerolog.Logger
	// Metrics is optional request instrumentation.
	Metrics Recorder
	// Resolver overrides device auto-detection.
	Resolver DeviceResolver
}

// Client talks to the license server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	resolver   DeviceResolver
	metrics    Recorder
	logger     zerolog.Logger
}

// New creates a new license client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %s", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		resolver:   cfg.Resolver,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With().Str("component", "lycento_client").Logger(),
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.NewSimple(timeout)
	}
	if c.resolver == nil {
		c.resolver = device.NewResolver(device.ResolverConfig{Logger: cfg.Logger})
	}

	return c, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Activate activates a license on a device. Device fields left empty are
// filled in from the current machine.
func (c *Client) Activate(ctx context.Context, opts ActivateOptions) (*ActivateResult, error) {
	call := c.newCall(OpActivation)

	payload := activateRequest{
		LicenseKey:     opts.LicenseKey,
		DeviceID:       opts.DeviceID,
		DeviceName:     opts.DeviceName,
		DevicePlatform: string(opts.DevicePlatform),
		IPAddress:      opts.IPAddress,
	}
	if payload.DeviceID == "" || payload.DeviceName == "" || payload.DevicePlatform == "" {
		info := c.resolver.Info(ctx)
		if payload.DeviceID == "" {
			payload.DeviceID = info.DeviceID
		}
		if payload.DeviceName == "" {
			payload.DeviceName = info.DeviceName
		}
		if payload.DevicePlatform == "" {
			payload.DevicePlatform = string(info.Platform)
		}
	}

	var resp activateResponse
	err := c.do(ctx, call, http.MethodPost, pathActivate, nil, payload, &resp)
	if err != nil {
		return nil, c.fail(call, err)
	}
	result, err := toActivateResult(&resp)
	if err != nil {
		return nil, c.fail(call, fmt.Errorf("map activation response: %w", err))
	}

	c.succeed(call)
	return result, nil
}

// Validate checks a license for a device. An empty DeviceID is resolved from
// the current machine.
func (c *Client) Validate(ctx context.Context, opts ValidateOptions) (*ValidateResult, error) {
	call := c.newCall(OpValidation)

	deviceID := opts.DeviceID
	if deviceID == "" {
		deviceID = c.resolver.DeviceID(ctx)
	}
	payload := deviceRequest{
		LicenseKey: opts.LicenseKey,
		DeviceID:   deviceID,
	}

	var resp validateResponse
	if err := c.do(ctx, call, http.MethodPost, pathValidate, nil, payload, &resp); err != nil {
		return nil, c.fail(call, err)
	}
	result, err := toValidateResult(&resp)
	if err != nil {
		return nil, c.fail(call, fmt.Errorf("map validation response: %w", err))
	}

	c.succeed(call)
	return result, nil
}

// Deactivate releases a license from the given device. DeviceID is required.
func (c *Client) Deactivate(ctx context.Context, opts DeactivateOptions) (*DeactivateResult, error) {
	call := c.newCall(OpDeactivation)

	if strings.TrimSpace(opts.DeviceID) == "" {
		return nil, c.fail(call, &Error{
			Kind:    KindDeactivation,
			Message: "device ID is required for deactivation",
		})
	}
	payload := deviceRequest{
		LicenseKey: opts.LicenseKey,
		DeviceID:   opts.DeviceID,
	}

	var resp deactivateResponse
	if err := c.do(ctx, call, http.MethodPost, pathDeactivate, nil, payload, &resp); err != nil {
		return nil, c.fail(call, err)
	}
	result, err := toDeactivateResult(&resp)
	if err != nil {
		return nil, c.fail(call, fmt.Errorf("map deactivation response: %w", err))
	}

	c.succeed(call)
	return result, nil
}

// GetInfo returns a license with its full activation history.
func (c *Client) GetInfo(ctx context.Context, licenseKey string) (*LicenseInfo, error) {
	call := c.newCall(OpInfo)

	query := url.Values{"license_key": []string{licenseKey}}

	var resp infoResponse
	if err := c.do(ctx, call, http.MethodGet, pathInfo, query, nil, &resp); err != nil {
		return nil, c.fail(call, err)
	}
	result, err := toLicenseInfo(&resp)
	if err != nil {
		return nil, c.fail(call, fmt.Errorf("map info response: %w", err))
	}

	c.succeed(call)
	return result, nil
}

// IsValid reports whether the license is valid for the device. An empty
// deviceID is resolved from the current machine. Any failure yields false.
func (c *Client) IsValid(ctx context.Context, licenseKey, deviceID string) bool {
	result, err := c.Validate(ctx, ValidateOptions{LicenseKey: licenseKey, DeviceID: deviceID})
	if err != nil {
		return false
	}
	return result.Valid
}

// ValidateLicense is a one-shot check of a license on the current machine
// using default settings. It returns false on any failure.
func ValidateLicense(ctx context.Context, licenseKey, baseURL, apiKey string) bool {
	c, err := New(Config{BaseURL: baseURL, APIKey: apiKey})
	if err != nil {
		return false
	}
	return c.IsValid(ctx, licenseKey, "")
}

// call carries per-operation state for logging and metrics.
type call struct {
	op     Operation
	start  time.Time
	logger zerolog.Logger
}

func (c *Client) newCall(op Operation) *call {
	return &call{
		op:    op,
		start: time.Now(),
		logger: c.logger.With().
			Str("operation", string(op)).
			Str("request_id", uuid.NewString()).
			Logger(),
	}
}

func (c *Client) succeed(cl *call) {
	elapsed := time.Since(cl.start)
	if c.metrics != nil {
		c.metrics.ObserveRequest(string(cl.op), "success", elapsed)
	}
	cl.logger.Debug().Dur("duration", elapsed).Msg("request succeeded")
}

func (c *Client) fail(cl *call, err error) *Error {
	lerr := classifyError(cl.op, err)
	elapsed := time.Since(cl.start)
	if c.metrics != nil {
		c.metrics.ObserveRequest(string(cl.op), string(lerr.Kind), elapsed)
	}
	cl.logger.Debug().
		Err(err).
		Str("kind", string(lerr.Kind)).
		Int("status", lerr.StatusCode).
		Dur("duration", elapsed).
		Msg("request failed")
	return lerr
}

// do sends one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, cl *call, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	cl.logger.Debug().Str("method", method).Str("path", path).Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &transportError{err: fmt.Errorf("read response: %w", err)}
	}

	cl.logger.Debug().Int("status", resp.StatusCode).Msg("received response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, body: respBody}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
