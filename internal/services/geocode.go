package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// GeocodeService resolves coordinates to human-readable addresses using the
// Google Maps Geocoding API. Failures always degrade to a raw coordinate
// string so callers never block on it.
type GeocodeService struct {
	apiKey string
	client *http.Client
}

// NewGeocodeService creates a geocoder. An empty API key disables lookups.
func NewGeocodeService(apiKey string) *GeocodeService {
	return &GeocodeService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"`
}

// ReverseGeocode returns an address for the coordinates, falling back to
// "Location: lat, lng" when the provider is unavailable or errors.
func (g *GeocodeService) ReverseGeocode(lat, lng float64) string {
	fallback := fmt.Sprintf("Location: %.5f, %.5f", lat, lng)

	if g.apiKey == "" {
		return fallback
	}

	endpoint := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?latlng=%s&key=%s",
		url.QueryEscape(fmt.Sprintf("%f,%f", lat, lng)),
		url.QueryEscape(g.apiKey),
	)

	resp, err := g.client.Get(endpoint)
	if err != nil {
		log.Printf("[Geocode] request failed: %v", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Geocode] unexpected status: %d", resp.StatusCode)
		return fallback
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("[Geocode] decode failed: %v", err)
		return fallback
	}

	if parsed.Status != "OK" || len(parsed.Results) == 0 {
		return fallback
	}

	return parsed.Results[0].FormattedAddress
}
