// Package vpic is a client for the NHTSA vPIC VIN decoding API.
package vpic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/fn"
	"github.com/WessleyAI/wessley-vin/pkg/resilience"
)

// DefaultBaseURL is the public vPIC endpoint.
const DefaultBaseURL = "https://vpic.nhtsa.dot.gov/api/vehicles"

var (
	// ErrNoResults is returned when vPIC answers without a result row.
	ErrNoResults = errors.New("vpic: no results")
	// ErrMalformed is returned when the response body is not vPIC JSON.
	ErrMalformed = errors.New("vpic: malformed response")
)

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("vpic: unexpected status %d", e.Code) }

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Details is the subset of vPIC's flat decode that enriches a local decode.
type Details struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	ModelYear    int    `json:"model_year,omitempty"`
	Manufacturer string `json:"manufacturer"`
	BodyClass    string `json:"body_class,omitempty"`
	VehicleType  string `json:"vehicle_type,omitempty"`
	PlantCountry string `json:"plant_country,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
	ErrorCode    string `json:"error_code"`
	ErrorText    string `json:"error_text,omitempty"`
}

// Clean reports whether vPIC decoded the VIN without complaint. vPIC returns
// comma-separated codes; "0" alone means clean.
func (d Details) Clean() bool { return strings.TrimSpace(d.ErrorCode) == "0" }

// Config configures a Client.
type Config struct {
	BaseURL string
	// RPS caps outbound requests per second. <= 0 disables limiting.
	RPS        float64
	Timeout    time.Duration
	HTTPClient *http.Client
	Retry      fn.RetryOpts
	Breaker    resilience.BreakerOpts
}

// Client decodes VINs against vPIC.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *resilience.Limiter
	breaker *resilience.Breaker
	retry   fn.RetryOpts
}

// New creates a Client. Zero config fields fall back to defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = fn.DefaultRetry
	}
	cfg.Retry.Retryable = retryable
	if cfg.Breaker.FailThreshold == 0 {
		cfg.Breaker = resilience.DefaultBreakerOpts
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  cfg.HTTPClient,
		limiter: resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.RPS, Burst: 1}),
		breaker: resilience.NewBreaker(cfg.Breaker),
		retry:   cfg.Retry,
	}
}

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() resilience.State { return c.breaker.State() }

// Decode looks a VIN up. modelYear narrows vPIC's own year guess and is
// omitted when zero. The VIN must be structurally valid.
func (c *Client) Decode(ctx context.Context, raw string, modelYear int) (Details, error) {
	v := vin.Normalize(raw)
	if err := vin.CheckStructure(v); err != nil {
		return Details{}, err
	}

	u := fmt.Sprintf("%s/DecodeVinValues/%s?format=json", c.baseURL, neturl.PathEscape(v))
	if modelYear > 0 {
		u += "&modelyear=" + strconv.Itoa(modelYear)
	}

	return fn.Retry(ctx, c.retry, func(ctx context.Context) fn.Result[Details] {
		if err := c.limiter.Wait(ctx); err != nil {
			return fn.Err[Details](err)
		}
		return resilience.CallResult(c.breaker, ctx, func(ctx context.Context) fn.Result[Details] {
			d, err := c.fetch(ctx, u)
			return fn.FromPair(d, err)
		})
	}).Unwrap()
}

type decodeResponse struct {
	Count   int         `json:"Count"`
	Message string      `json:"Message"`
	Results []resultRow `json:"Results"`
}

type resultRow struct {
	Make            string `json:"Make"`
	Model           string `json:"Model"`
	ModelYear       string `json:"ModelYear"`
	Manufacturer    string `json:"Manufacturer"`
	BodyClass       string `json:"BodyClass"`
	VehicleType     string `json:"VehicleType"`
	PlantCountry    string `json:"PlantCountry"`
	FuelTypePrimary string `json:"FuelTypePrimary"`
	ErrorCode       string `json:"ErrorCode"`
	ErrorText       string `json:"ErrorText"`
}

func (c *Client) fetch(ctx context.Context, u string) (Details, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Details{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wessley-vin/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return Details{}, fmt.Errorf("vpic decode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Details{}, &StatusError{Code: resp.StatusCode}
	}

	var dr decodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return Details{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(dr.Results) == 0 {
		return Details{}, ErrNoResults
	}
	row := dr.Results[0]
	year, _ := strconv.Atoi(strings.TrimSpace(row.ModelYear))
	return Details{
		Make:         row.Make,
		Model:        row.Model,
		ModelYear:    year,
		Manufacturer: row.Manufacturer,
		BodyClass:    row.BodyClass,
		VehicleType:  row.VehicleType,
		PlantCountry: row.PlantCountry,
		FuelType:     row.FuelTypePrimary,
		ErrorCode:    row.ErrorCode,
		ErrorText:    row.ErrorText,
	}, nil
}

// retryable retries throttling, server errors and transport failures. An
// open circuit or a cancelled context ends the attempt loop.
func retryable(err error) bool {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Temporary()
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrNoResults),
		errors.Is(err, ErrMalformed):
		return false
	}
	return true
}
