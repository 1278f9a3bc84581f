// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

// Command loadtest hammers the drop purchase flow. Every worker loops on
// purchase attempts; in e2e mode a successful purchase is immediately
// confirmed through the payment webhook, so workers race each other for
// stock exactly the way real buyers do. Sold-out rejections are expected
// output, not failures.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/donaldvibe/storefront/internal/api"
)

type counters struct {
	attempts  atomic.Uint64
	purchased atomic.Uint64
	confirmed atomic.Uint64
	soldOut   atomic.Uint64
	failed    atomic.Uint64
}

type latencies struct {
	mu      sync.Mutex
	samples []time.Duration
}

func (l *latencies) add(d time.Duration) {
	l.mu.Lock()
	l.samples = append(l.samples, d)
	l.mu.Unlock()
}

func (l *latencies) percentile(p float64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(l.samples))
	copy(sorted, l.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:3030", "base URL of the drops API")
		dropID   = flag.String("drop", "1", "drop to purchase")
		workers  = flag.Int("c", 50, "concurrent workers")
		duration = flag.Duration("d", 10*time.Second, "test duration")
		mode     = flag.String("mode", "e2e", "purchase | e2e (purchase + payment webhook)")
	)
	flag.Parse()

	if *mode != "purchase" && *mode != "e2e" {
		log.Fatalf("loadtest: unknown mode %q", *mode)
	}

	log.Printf("loadtest: %s drop=%s workers=%d duration=%s mode=%s",
		*baseURL, *dropID, *workers, *duration, *mode)

	client := api.New(*baseURL, 5*time.Second)
	webhookClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 5 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var (
		stats counters
		lat   latencies
		wg    sync.WaitGroup
	)

	start := time.Now()
	wg.Add(*workers)
	for i := 0; i < *workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			runWorker(ctx, workerID, client, webhookClient, *baseURL, *dropID, *mode, &stats, &lat)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	attempts := stats.attempts.Load()
	log.Printf("loadtest: done in %s", elapsed.Round(time.Millisecond))
	log.Printf("  attempts:   %d (%.1f req/s)", attempts, float64(attempts)/elapsed.Seconds())
	log.Printf("  purchased:  %d", stats.purchased.Load())
	if *mode == "e2e" {
		log.Printf("  confirmed:  %d", stats.confirmed.Load())
	}
	log.Printf("  sold out:   %d", stats.soldOut.Load())
	log.Printf("  failed:     %d", stats.failed.Load())
	log.Printf("  latency:    p50=%s p95=%s p99=%s",
		lat.percentile(0.50).Round(time.Millisecond),
		lat.percentile(0.95).Round(time.Millisecond),
		lat.percentile(0.99).Round(time.Millisecond))
}

func runWorker(ctx context.Context, workerID int, client api.Client, webhookClient *http.Client,
	baseURL, dropID, mode string, stats *counters, lat *latencies) {

	req := api.PurchaseRequest{
		Quantity: 1,
		Name:     fmt.Sprintf("LoadTest User %d", workerID),
		Phone:    "0987654321",
		Email:    fmt.Sprintf("user%d@example.com", workerID),
		Address:  "123 Load Test St",
		Province: "Hanoi",
		District: "Cau Giay",
		Ward:     "Dich Vong",
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		stats.attempts.Add(1)
		began := time.Now()
		result, err := client.Purchase(ctx, dropID, req)
		lat.add(time.Since(began))

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			var apiErr *api.Error
			if errors.As(err, &apiErr) {
				// Backend rejection: almost always stock exhaustion
				// under load.
				stats.soldOut.Add(1)
			} else {
				stats.failed.Add(1)
			}
			continue
		}
		if result == nil || result.OrderCode == 0 {
			stats.failed.Add(1)
			continue
		}
		stats.purchased.Add(1)

		if mode != "e2e" {
			continue
		}
		if fireWebhook(ctx, webhookClient, baseURL, result.OrderCode) {
			stats.confirmed.Add(1)
		} else {
			stats.soldOut.Add(1)
		}
	}
}

// fireWebhook confirms a purchase the way PayOS would. A non-200 answer
// means the stock claim lost the race.
func fireWebhook(ctx context.Context, client *http.Client, baseURL string, orderCode int64) bool {
	payload := map[string]any{
		"code": "00",
		"data": map[string]any{
			"orderCode": orderCode,
			"amount":    10000,
			"status":    "PAID",
		},
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		baseURL+"/api/limited-drops/webhook/payos", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
