// Package gios talks to the GIOŚ air-quality REST API: the station
// listing, per-station sensor listings and per-sensor measurement data.
package gios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tjsjts22/jpoproject/internal/airquality"
)

// DefaultBaseURL is the public GIOŚ REST endpoint.
const DefaultBaseURL = "https://api.gios.gov.pl/pjp-api/rest"

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client fetches from the GIOŚ API with retries, exponential backoff and
// a circuit breaker shared across all endpoints.
type Client struct {
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client over the given HTTP client. An empty
// baseURL selects the public API.
func NewClient(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gios",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		client:  client,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// CityListing is the nested city object of the upstream station listing.
type CityListing struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Commune struct {
		CommuneName  string `json:"communeName"`
		DistrictName string `json:"districtName"`
		ProvinceName string `json:"provinceName"`
	} `json:"commune"`
}

// StationListing is one entry of the upstream full station listing.
// Coordinates arrive as strings and stations without a city object do
// occur; the catalog layer decides what to keep.
type StationListing struct {
	ID          int          `json:"id"`
	StationName string       `json:"stationName"`
	GegrLat     string       `json:"gegrLat"`
	GegrLon     string       `json:"gegrLon"`
	City        *CityListing `json:"city"`
}

type sensorListing struct {
	ID        int               `json:"id"`
	StationID int               `json:"stationId"`
	Param     *airquality.Param `json:"param"`
}

type sensorDataPayload struct {
	Key    string                  `json:"key"`
	Values []airquality.ValueEntry `json:"values"`
}

// FindAllStations fetches the full upstream station listing.
func (c *Client) FindAllStations(ctx context.Context) ([]StationListing, error) {
	var listing []StationListing
	if err := c.getJSON(ctx, "/station/findAll", &listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// StationSensors fetches the sensor listing for one station.
func (c *Client) StationSensors(ctx context.Context, stationID int) ([]airquality.SensorInfo, error) {
	var listing []sensorListing
	if err := c.getJSON(ctx, fmt.Sprintf("/station/sensors/%d", stationID), &listing); err != nil {
		return nil, err
	}

	sensors := make([]airquality.SensorInfo, 0, len(listing))
	for _, s := range listing {
		sensors = append(sensors, airquality.SensorInfo{ID: s.ID, Param: s.Param})
	}
	return sensors, nil
}

// SensorData fetches the raw measurement payload for one sensor. Entries
// arrive newest first with possibly null values; they are passed through
// untouched for the cache layer to persist as-is.
func (c *Client) SensorData(ctx context.Context, sensorID int) (airquality.SensorPayload, error) {
	var payload sensorDataPayload
	if err := c.getJSON(ctx, fmt.Sprintf("/data/getData/%d", sensorID), &payload); err != nil {
		return airquality.SensorPayload{}, err
	}
	return airquality.SensorPayload{Key: payload.Key, Values: payload.Values}, nil
}

// getJSON executes a GET against the API with retries, exponential
// backoff and the circuit breaker, then decodes the body into target.
func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	resp, err := c.do(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %v", airquality.ErrMalformedPayload, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	if c.client == nil {
		return nil, errNoHTTPClient
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Rate limiting and server errors are retryable; anything
			// else outside 2xx is not worth repeating.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if errors.Is(err, errUnexpected) {
			return nil, err
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
