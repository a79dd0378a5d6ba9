package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
)

const (
	geocoderBaseURL = "https://mreversegeocoder.gsi.go.jp/reverse-geocoder/LonLatToAddress"
	geocodeTimeout  = 10 * time.Second
	geocodeRetries  = 2
)

// GeocodeService proxies reverse-geocoding lookups to the GSI collaborator.
// The upstream payload is passed through verbatim.
type GeocodeService struct {
	baseURL string
	http    *httpclient.Client
}

// NewGeocodeService creates a geocode proxy with retrying transport
func NewGeocodeService() *GeocodeService {
	backoff := heimdall.NewConstantBackoff(500*time.Millisecond, 50*time.Millisecond)
	return &GeocodeService{
		baseURL: geocoderBaseURL,
		http: httpclient.NewClient(
			httpclient.WithHTTPTimeout(geocodeTimeout),
			httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
			httpclient.WithRetryCount(geocodeRetries),
		),
	}
}

// Lookup resolves latitude/longitude to the upstream place payload.
func (s *GeocodeService) Lookup(ctx context.Context, lat, lon string) ([]byte, error) {
	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read geocoder response: %w", err)
	}
	return body, nil
}
