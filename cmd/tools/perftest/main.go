// main.go - Load testing tool for the burn endpoint
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"log/slog"

	"github.com/goccy/go-json"

	v1 "thoughtburn/api/v1"
	"thoughtburn/internal/pkg/async"
)

// PerfConfig holds the configuration for the load test
type PerfConfig struct {
	BaseURL     string
	Concurrency int
	PerClient   int
	Timeout     time.Duration
}

// ClientStats is what one simulated client observed
type ClientStats struct {
	Accepted  int
	Failed    int
	Latencies []time.Duration
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "Base URL of the API")
	concurrency := flag.Int("c", 10, "Number of concurrent clients")
	perClient := flag.Int("n", 50, "Burns sent by each client")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	config := &PerfConfig{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		PerClient:   *perClient,
		Timeout:     *timeout,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := &http.Client{Timeout: config.Timeout}

	before, err := fetchToday(ctx, client, config.BaseURL)
	if err != nil {
		logger.Error("Failed to read today's count", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("Sending %d burns from %d concurrent clients to %s\n",
		config.Concurrency*config.PerClient, config.Concurrency, config.BaseURL)

	start := time.Now()
	results := runTest(ctx, client, config)
	elapsed := time.Since(start)

	after, err := fetchToday(ctx, client, config.BaseURL)
	if err != nil {
		logger.Error("Failed to read today's count", slog.Any("error", err))
		os.Exit(1)
	}

	accepted := printResults(results, elapsed)

	// Burns lost to overlapping read-modify-write cycles on the server
	lost := accepted - (after - before)
	fmt.Printf("Today before/after:   %d / %d\n", before, after)
	fmt.Printf("Lost updates:         %d\n", lost)
	if lost > 0 {
		fmt.Println("Set THOUGHTBURN_SERIALIZE_WRITES=true to serialize records within the server.")
		os.Exit(2)
	}
}

// runTest runs one pool task per client; each client sends its burns sequentially
func runTest(ctx context.Context, client *http.Client, config *PerfConfig) map[string]async.Result[ClientStats] {
	tasks := make([]async.Task[ClientStats], 0, config.Concurrency)
	for i := 0; i < config.Concurrency; i++ {
		tasks = append(tasks, async.Task[ClientStats]{
			Name: fmt.Sprintf("client-%d", i),
			Execute: func(ctx context.Context) (ClientStats, error) {
				var stats ClientStats
				for n := 0; n < config.PerClient; n++ {
					if ctx.Err() != nil {
						return stats, ctx.Err()
					}
					began := time.Now()
					if err := sendBurn(ctx, client, config.BaseURL); err != nil {
						stats.Failed++
						continue
					}
					stats.Accepted++
					stats.Latencies = append(stats.Latencies, time.Since(began))
				}
				return stats, nil
			},
		})
	}
	return async.NewPool[ClientStats](config.Concurrency).Execute(ctx, tasks)
}

func newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	// The API only accepts writes from the app's own pages
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	return req, nil
}

func sendBurn(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := newRequest(ctx, http.MethodPost, baseURL+"/api/v1/thoughts/burn")
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func fetchToday(ctx context.Context, client *http.Client, baseURL string) (int, error) {
	req, err := newRequest(ctx, http.MethodGet, baseURL+"/api/v1/analytics/today")
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var today v1.TodayResponse
	if err := json.NewDecoder(resp.Body).Decode(&today); err != nil {
		return 0, fmt.Errorf("decode today: %w", err)
	}
	return today.Count, nil
}

// printResults prints the summary and returns the number of accepted burns
func printResults(results map[string]async.Result[ClientStats], elapsed time.Duration) int {
	accepted, failed := 0, 0
	var latencies []time.Duration
	for _, r := range results {
		accepted += r.Data.Accepted
		failed += r.Data.Failed
		latencies = append(latencies, r.Data.Latencies...)
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println("\n=== Results ===")
	fmt.Printf("Accepted:             %d\n", accepted)
	fmt.Printf("Failed:               %d\n", failed)
	fmt.Printf("Elapsed:              %v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		fmt.Printf("Throughput:           %.1f req/s\n", float64(accepted+failed)/elapsed.Seconds())
	}
	if len(latencies) > 0 {
		fmt.Printf("Latency p50/p95/max:  %v / %v / %v\n",
			percentile(latencies, 50), percentile(latencies, 95), latencies[len(latencies)-1])
	}
	return accepted
}

// percentile expects sorted input
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
