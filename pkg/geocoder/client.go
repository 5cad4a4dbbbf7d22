package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

const (
	defaultBaseURL             = "https://maps.googleapis.com/maps/api/geocode/json"
	responseBodyReadLimit int64 = 1024

	statusOK            = "OK"
	statusZeroResults   = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
)

var (
	errAPIKeyRequired = errors.New("geocoder api key is required")

	// ErrUnresolved means the address produced no usable coordinate.
	ErrUnresolved = errors.New("address could not be resolved")
	// ErrRateLimited is distinct from not-found so callers can back off and retry.
	ErrRateLimited = errors.New("geocoder rate limit exceeded")
)

// Client wraps the HTTP geocoding API that turns a postal address into a
// coordinate pair.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	region     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured geocode base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRegion biases results toward the provided region code.
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = strings.TrimSpace(region)
	}
}

// NewClient builds the geocoder client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Result is the resolved coordinate for an address.
type Result struct {
	Location         types.LatLng
	FormattedAddress string
}

// Geocode resolves the provided address, returning ErrUnresolved for
// addresses the upstream cannot place and ErrRateLimited on quota pushback.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocoder client not configured")
	}
	if strings.TrimSpace(address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	query := url.Values{}
	query.Set("address", address)
	query.Set("key", c.apiKey)
	if c.region != "" {
		query.Set("region", c.region)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	switch apiResp.Status {
	case statusOK:
	case statusOverQueryLimit:
		return nil, ErrRateLimited
	case statusZeroResults:
		return nil, ErrUnresolved
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("geocode status %s", apiResp.Status), "geocode request failed")
	}

	if len(apiResp.Results) == 0 {
		return nil, ErrUnresolved
	}

	first := apiResp.Results[0]
	location := types.LatLng{Lat: first.Geometry.Location.Lat, Lng: first.Geometry.Location.Lng}
	if !location.Valid() {
		return nil, ErrUnresolved
	}

	return &Result{
		Location:         location,
		FormattedAddress: first.FormattedAddress,
	}, nil
}
