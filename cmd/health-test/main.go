package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type StoreHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Services  struct {
		Store StoreHealth `json:"store"`
	} `json:"services"`
}

// errUnhealthy marks a well-formed report of a failing service, as opposed to
// an endpoint that could not be reached or returned garbage.
var errUnhealthy = errors.New("service unhealthy")

func main() {
	url := flag.String("url", "http://localhost:3000/health", "health endpoint to check")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	retries := flag.Int("retries", 0, "extra attempts while the service is unreachable or unhealthy")
	interval := flag.Duration("interval", 2*time.Second, "pause between attempts")
	flag.Parse()

	client := &http.Client{Timeout: *timeout}
	fmt.Printf("Testing health endpoint: %s\n", *url)

	var (
		health *HealthResponse
		err    error
	)
	for attempt := 0; attempt <= *retries; attempt++ {
		if attempt > 0 {
			fmt.Printf("Attempt %d failed (%v), retrying in %s\n", attempt, err, *interval)
			time.Sleep(*interval)
		}
		health, err = checkHealth(client, *url)
		if err == nil {
			break
		}
	}

	if err != nil {
		fmt.Printf("Health check failed: %v\n", err)
		if health != nil && health.Services.Store.Error != "" {
			fmt.Printf("   Store error: %s\n", health.Services.Store.Error)
		}
		os.Exit(1)
	}

	fmt.Printf("Health check passed!\n")
	fmt.Printf("   Status: %s\n", health.Status)
	fmt.Printf("   Version: %s\n", health.Version)
	fmt.Printf("   Store: %s\n", health.Services.Store.Status)
	fmt.Printf("   Timestamp: %s\n", health.Timestamp)
}

// checkHealth fetches and validates one health report. A non-nil report is
// returned whenever the body could be decoded, even if it describes a failure.
func checkHealth(client *http.Client, url string) (*HealthResponse, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to health endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("error parsing response (HTTP %d): %w", resp.StatusCode, err)
	}

	if err := validateReport(resp.StatusCode, &health); err != nil {
		return &health, err
	}
	return &health, nil
}

func validateReport(statusCode int, health *HealthResponse) error {
	if health.Version == "" {
		return errors.New("report has no version")
	}
	if _, err := time.Parse(time.RFC3339, health.Timestamp); err != nil {
		return fmt.Errorf("report timestamp %q is not RFC3339: %w", health.Timestamp, err)
	}

	switch health.Status {
	case "ok":
		if statusCode != http.StatusOK {
			return fmt.Errorf("status ok reported with HTTP %d", statusCode)
		}
		if health.Services.Store.Status != "ok" {
			return fmt.Errorf("status ok but store is %q", health.Services.Store.Status)
		}
		return nil
	case "error":
		if statusCode != http.StatusServiceUnavailable {
			return fmt.Errorf("status error reported with HTTP %d", statusCode)
		}
		return fmt.Errorf("%w: store is %q", errUnhealthy, health.Services.Store.Status)
	default:
		return fmt.Errorf("unknown status %q (HTTP %d)", health.Status, statusCode)
	}
}
