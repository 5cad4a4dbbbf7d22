package geocoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected api key to be forwarded, got %q", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGeocodeResolvesAddress(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{
		"status": "OK",
		"results": [{
			"formatted_address": "123 Main St, Rochester, IN 46975, USA",
			"geometry": {"location": {"lat": 41.0645, "lng": -86.2158}}
		}]
	}`)

	client, err := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Geocode(context.Background(), "123 Main St, Rochester IN")
	if err != nil {
		t.Fatalf("geocode failed: %v", err)
	}
	if result.Location.Lat != 41.0645 || result.Location.Lng != -86.2158 {
		t.Fatalf("unexpected location: %+v", result.Location)
	}
	if result.FormattedAddress == "" {
		t.Fatal("expected formatted address")
	}
}

func TestGeocodeZeroResults(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"status": "ZERO_RESULTS", "results": []}`)

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Geocode(context.Background(), "nowhere at all"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestGeocodeRateLimit(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"http 429", http.StatusTooManyRequests, ""},
		{"over query limit", http.StatusOK, `{"status": "OVER_QUERY_LIMIT"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, tc.status, tc.body)
			client, err := NewClient("test-key", WithBaseURL(server.URL))
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			if _, err := client.Geocode(context.Background(), "123 Main St"); !errors.Is(err, ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited, got %v", err)
			}
		})
	}
}

func TestGeocodeRejectsOriginCoordinate(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{
		"status": "OK",
		"results": [{"geometry": {"location": {"lat": 0, "lng": 0}}}]
	}`)

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Geocode(context.Background(), "123 Main St"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved for (0,0), got %v", err)
	}
}

func TestGeocodeRequiresAddress(t *testing.T) {
	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Geocode(context.Background(), "   "); err == nil {
		t.Fatal("expected validation error for blank address")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
