// Package fleet is a minimal client for the fleet-management API. It covers
// the read-only endpoints the CLI needs: listing enrolled devices and
// finding the record that matches a device name or serial number.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// pageLimit is the number of devices requested per page.
const pageLimit = 300

// Sentinel errors for API failures callers branch on.
var (
	// ErrUnauthorized is returned for 401/403 responses; the token is
	// missing, expired, or lacks the device-list permission.
	ErrUnauthorized = errors.New("fleet API authorization failed")

	// ErrNotFound is returned when no device matches the search term.
	ErrNotFound = errors.New("device not found")
)

// Device is a device record as the fleet API reports it.
type Device struct {
	DeviceID     string `json:"device_id"`
	DeviceName   string `json:"device_name"`
	SerialNumber string `json:"serial_number"`
	Model        string `json:"model"`
	Platform     string `json:"platform"`
	User         User   `json:"user"`
}

// User is the person a device is assigned to.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Client talks to the fleet-management API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  zerolog.Logger
}

// New creates a Client for the given API base URL and bearer token.
func New(baseURL, token string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// ListDevices retrieves every enrolled device, following the API's
// limit/offset pagination until an empty page is returned.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	offset := 0

	for {
		page, err := c.listPage(ctx, pageLimit, offset)
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			break
		}

		devices = append(devices, page...)
		offset += pageLimit
	}

	c.logger.Debug().Int("count", len(devices)).Msg("device list retrieved")

	return devices, nil
}

// FindDevice returns the device whose name or serial number matches term,
// case-insensitively. It returns ErrNotFound when nothing matches.
func (c *Client) FindDevice(ctx context.Context, term string) (*Device, error) {
	devices, err := c.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(term)
	for i := range devices {
		if strings.ToLower(devices[i].DeviceName) == lower ||
			strings.ToLower(devices[i].SerialNumber) == lower {
			return &devices[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, term)
}

// listPage retrieves a single page of the device list.
func (c *Client) listPage(ctx context.Context, limit, offset int) ([]Device, error) {
	endpoint := c.baseURL + "/v1/devices"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fleet API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var page []Device
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding device list: %w", err)
	}

	return page, nil
}

// statusError maps a non-200 response to an error, draining a little of the
// body for context.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	c.logger.Warn().
		Int("status", resp.StatusCode).
		Str("body", string(body)).
		Msg("fleet API error response")

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case http.StatusTooManyRequests:
		return fmt.Errorf("fleet API rate limit reached (status %d)", resp.StatusCode)
	default:
		return fmt.Errorf("fleet API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
