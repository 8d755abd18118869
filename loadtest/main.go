package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"lingoflow/client"
	v1 "lingoflow/pkg/api/v1"

	"github.com/google/uuid"
)

// Configuration
var (
	targetURL = flag.String("url", "http://localhost:8080", "Server address")
	totalVUs  = flag.Int("c", 50, "Concurrent writers")
	perVU     = flag.Int("n", 20, "Features created per writer")
	rampUp    = flag.Duration("ramp", 2*time.Second, "Ramp up duration")
	cleanup   = flag.Bool("cleanup", true, "Delete created features afterwards")
)

// Metrics
var (
	created      int64
	limited      int64
	writeErrors  int64
	latencySum   int64 // milliseconds
	latencyCount int64
)

func main() {
	flag.Parse()

	runID := uuid.New().String()[:8]
	c := client.NewLingoClient(*targetURL, 30*time.Second)

	fmt.Printf("🚀 Starting Load Test\n")
	fmt.Printf("   Target: %s\n", *targetURL)
	fmt.Printf("   VUs: %d x %d features\n", *totalVUs, *perVU)
	fmt.Printf("   Run: %s\n", runID)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metric Reporter
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report()
			}
		}
	}()

	// Ramp-up Logic
	interval := *rampUp / time.Duration(*totalVUs)
	for i := 0; i < *totalVUs; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWriter(ctx, c, runID, id)
		}(i)
		time.Sleep(interval)
	}

	fmt.Println("✅ All VUs launched. Waiting...")
	wg.Wait()
	report()

	lost, err := verify(ctx, c, runID)
	if err != nil {
		fmt.Printf("verification failed: %v\n", err)
		os.Exit(1)
	}
	if lost > 0 {
		fmt.Printf("❌ %d acknowledged writes are missing\n", lost)
		os.Exit(2)
	}
	fmt.Println("✅ every acknowledged write is present")
}

func report() {
	latSum := atomic.SwapInt64(&latencySum, 0)
	latCnt := atomic.SwapInt64(&latencyCount, 0)
	avgLat := float64(0)
	if latCnt > 0 {
		avgLat = float64(latSum) / float64(latCnt)
	}
	fmt.Printf("[%s] Created: %d | 429s: %d | Errors: %d | Avg Latency: %.2f ms\n",
		time.Now().Format("15:04:05"),
		atomic.LoadInt64(&created), atomic.LoadInt64(&limited), atomic.LoadInt64(&writeErrors), avgLat)
}

func runWriter(ctx context.Context, c *client.LingoClient, runID string, id int) {
	for i := 0; i < *perVU; i++ {
		start := time.Now()
		_, err := c.Create(ctx, v1.CreateFeatureInput{
			Name:    fmt.Sprintf("loadtest-%s-%d-%d", runID, id, i),
			Version: "loadtest-" + runID,
			Date:    start.Format("2006-01-02"),
			Fields: []v1.Field{{
				Key:          "lt_key",
				Name:         "Load test",
				Translations: v1.Translations{"en": "Hello", "zh-CN": "你好"},
			}},
		})
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
				atomic.AddInt64(&limited, 1)
			} else if atomic.AddInt64(&writeErrors, 1) == 1 {
				fmt.Printf("Error creating feature: %v\n", err)
			}
			continue
		}
		atomic.AddInt64(&created, 1)
		atomic.AddInt64(&latencySum, time.Since(start).Milliseconds())
		atomic.AddInt64(&latencyCount, 1)
	}
}

// verify lists the run's features and compares them with the acknowledged
// creates. A file store without a lock loses writes here.
func verify(ctx context.Context, c *client.LingoClient, runID string) (int64, error) {
	features, err := c.List(ctx, "", "loadtest-"+runID)
	if err != nil {
		return 0, err
	}
	fmt.Printf("   stored: %d, acknowledged: %d\n", len(features), atomic.LoadInt64(&created))

	if *cleanup {
		for _, f := range features {
			if err := c.Delete(ctx, f.ID); err != nil && !client.IsNotFound(err) {
				fmt.Printf("cleanup %s: %v\n", f.ID, err)
			}
		}
	}
	return atomic.LoadInt64(&created) - int64(len(features)), nil
}
