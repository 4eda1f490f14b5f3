// Package weather queries the wttr.in JSON API.
package weather

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
)

// ErrNoConditions is returned when the answer lacks current_condition[0].temp_C
var ErrNoConditions = errors.New("weather: no current temperature in response")

// Report is the part of the j1 format the checks look at
type Report struct {
	CurrentCondition []Condition `json:"current_condition"`
}

// Condition is one current-conditions entry
type Condition struct {
	TempC       string `json:"temp_C"`
	FeelsLikeC  string `json:"FeelsLikeC"`
	Humidity    string `json:"humidity"`
	Observation string `json:"observation_time"`
}

// Client fetches weather reports
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient creates a weather client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Timeout: timeout,
	}
}

// Current fetches the report for city and returns its current temperature in Celsius
func (c *Client) Current(ctx context.Context, city string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	target := fmt.Sprintf("%s/%s?format=j1", c.BaseURL, url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("weather: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("weather: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather: GET %s: HTTP %d", target, resp.StatusCode)
	}
	return ParseTemperature(body)
}

// ParseTemperature extracts current_condition[0].temp_C from a j1 document
func ParseTemperature(body []byte) (string, error) {
	var rep Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return "", fmt.Errorf("weather: decode response: %w", err)
	}
	if len(rep.CurrentCondition) == 0 || rep.CurrentCondition[0].TempC == "" {
		return "", ErrNoConditions
	}
	return rep.CurrentCondition[0].TempC, nil
}
