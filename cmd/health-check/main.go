// Package main provides a standalone health probe for container health
// checks and monitoring scripts
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/pkg/healthcheck"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Options holds command-line configuration
type Options struct {
	URL            string
	Timeout        time.Duration
	Verbose        bool
	OutputFormat   string
	ExpectedStatus string
	RetryCount     int
	RetryDelay     time.Duration
	ConfigPath     string
}

func main() {
	opts := parseFlags()

	if opts.URL == "" {
		url, err := defaultURL(opts.ConfigPath)
		if err != nil {
			fmt.Printf("Failed to load configuration: %v\n", err)
			os.Exit(exitCodeError)
		}
		opts.URL = url
	}

	os.Exit(run(opts))
}

// parseFlags parses command-line flags
func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.URL, "url", os.Getenv("HEALTH_CHECK_URL"), "Health endpoint URL; defaults to the configured operations port")
	flag.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Request timeout")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	flag.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, compact")
	flag.StringVar(&opts.ExpectedStatus, "expect", "degraded", "Worst acceptable status: healthy, degraded")
	flag.IntVar(&opts.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&opts.RetryDelay, "retry-delay", 1*time.Second, "Delay between retries")
	flag.StringVar(&opts.ConfigPath, "config", "", "Configuration file path")

	flag.Parse()
	return opts
}

// defaultURL points at the health endpoint of the operations server
func defaultURL(configPath string) (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Monitoring.MetricsPort, cfg.Monitoring.HealthCheckPath), nil
}

// run performs the health check via HTTP
func run(opts Options) int {
	client := &http.Client{Timeout: opts.Timeout}

	var lastError error
	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		if attempt > 0 {
			if opts.Verbose {
				fmt.Printf("Retrying in %v... (attempt %d/%d)\n", opts.RetryDelay, attempt, opts.RetryCount)
			}
			time.Sleep(opts.RetryDelay)
		}

		resp, err := client.Get(opts.URL)
		if err != nil {
			lastError = err
			if opts.Verbose {
				fmt.Printf("Request failed: %v\n", err)
			}
			continue
		}

		return handleResponse(resp, opts)
	}

	fmt.Printf("Health check failed after %d attempts: %v\n", opts.RetryCount+1, lastError)
	return exitCodeError
}

// probeResponse mirrors the health endpoint body
type probeResponse struct {
	Status    healthcheck.Status `json:"status"`
	Version   string             `json:"version"`
	Timestamp time.Time          `json:"timestamp"`
	Checks    []struct {
		Name       string             `json:"name"`
		Status     healthcheck.Status `json:"status"`
		Message    string             `json:"message"`
		DurationMS float64            `json:"duration_ms"`
	} `json:"checks"`
}

// handleResponse decodes the body and maps the status to an exit code
func handleResponse(resp *http.Response, opts Options) int {
	defer resp.Body.Close()

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fmt.Printf("Failed to decode response: %v\n", err)
		return exitCodeError
	}

	var result probeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to decode response: %v\n", err)
		return exitCodeError
	}

	switch opts.OutputFormat {
	case "json":
		var indented interface{}
		_ = json.Unmarshal(body, &indented)
		data, _ := json.MarshalIndent(indented, "", "  ")
		fmt.Println(string(data))
	case "compact":
		fmt.Println(string(body))
	default:
		outputText(result, opts.Verbose)
	}

	return exitCode(result.Status, healthcheck.Status(opts.ExpectedStatus))
}

// exitCode fails when the status is worse than the worst acceptable one
func exitCode(status, worstAcceptable healthcheck.Status) int {
	switch status {
	case healthcheck.StatusHealthy:
		return exitCodeSuccess
	case healthcheck.StatusDegraded:
		if worstAcceptable == healthcheck.StatusHealthy {
			return exitCodeFailure
		}
		return exitCodeSuccess
	default:
		return exitCodeFailure
	}
}

// outputText outputs the result in text format
func outputText(r probeResponse, verbose bool) {
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Version: %s\n", r.Version)
	fmt.Printf("Timestamp: %s\n", r.Timestamp.Format(time.RFC3339))

	if verbose && len(r.Checks) > 0 {
		fmt.Println("\nChecks:")
		for _, check := range r.Checks {
			fmt.Printf("  %s: %s", check.Name, check.Status)
			if check.Message != "" {
				fmt.Printf(" (%s)", check.Message)
			}
			fmt.Printf(" [%.0fms]\n", check.DurationMS)
		}
	}
}
