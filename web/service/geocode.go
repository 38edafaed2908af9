package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/util/common"
)

const defaultGeocodeURL = "https://nominatim.openstreetmap.org/search"

// Coord is an optional coordinate pair; callers get nil when geocoding
// yields nothing.
type Coord struct {
	Lat float64
	Lon float64
}

// GeocodeService resolves a street address to coordinates via Nominatim.
// It is strictly best-effort: the caller treats any error as "no pin".
type GeocodeService struct {
	// BaseURL overrides the geocoder endpoint, mainly for tests.
	BaseURL string
}

// Geocode looks up the first match for address, bounded by timeout so a
// slow or unreachable service cannot hang the request.
func (s *GeocodeService) Geocode(address string, timeout time.Duration) (*Coord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	base := s.BaseURL
	if base == "" {
		base = defaultGeocodeURL
	}
	query := url.Values{
		"format": {"json"},
		"q":      {address},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.GetName()+"/"+config.GetVersion())

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, common.NewErrorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, err
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, err
	}
	return &Coord{Lat: lat, Lon: lon}, nil
}
