package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"
	"go.uber.org/atomic"
)

var (
	baseURL      = flag.String("url", "http://127.0.0.1:5000", "daemon base URL")
	numWorkers   = flag.Int("workers", 20, "concurrent workers")
	testDuration = flag.Duration("duration", 10*time.Second, "length of each phase")
	photoPath    = flag.String("photo", "", "JPEG to send to /upload-photo; the photo phase is skipped when empty")
)

var emotionNames = []string{"Happy", "Angry", "Neutral", "Sad"}

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()

	fmt.Println("=== emospray load test ===")
	fmt.Printf("Target: %s | Workers: %d | Phase: %s\n\n", *baseURL, *numWorkers, *testDuration)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			drain(resp)
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			os.Exit(1)
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: manual writes (POST /upload-manual) ---")
	runPhase(func(rng *rand.Rand) result {
		return doUploadManual(rng)
	})

	fmt.Println("\n--- Phase 2: device polling (95% GET /device, 5% POST /upload-manual) ---")
	runPhase(func(rng *rand.Rand) result {
		if rng.Float64() < 0.05 {
			return doUploadManual(rng)
		}
		return doGetDevice()
	})

	if *photoPath == "" {
		return
	}
	raw, err := os.ReadFile(*photoPath)
	if err != nil {
		fmt.Printf("skip photo phase: %s\n", err)
		return
	}
	photo, _ := json.Marshal(map[string]string{
		"photo": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw),
	})

	fmt.Println("\n--- Phase 3: photos with polling (20% POST /upload-photo, 80% GET /device) ---")
	runPhase(func(rng *rand.Rand) result {
		if rng.Float64() < 0.20 {
			return doUploadPhoto(photo)
		}
		return doGetDevice()
	})
}

func runPhase(workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	totalOps := atomic.NewInt64(0)
	stop := make(chan struct{})

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Inc()
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(*testDuration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, totalOps.Load())
}

func printResults(allResults map[string]*stats, totalOps int64) {
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / testDuration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doUploadManual(rng *rand.Rand) result {
	type setting struct {
		Name          string  `json:"name"`
		SprayPeriod   float64 `json:"sprayPeriod"`
		SprayDuration float64 `json:"sprayDuration"`
		IsActive      bool    `json:"isActive"`
	}
	emotions := make([]setting, 0, len(emotionNames))
	for _, name := range emotionNames {
		emotions = append(emotions, setting{
			Name:          name,
			SprayPeriod:   float64(rng.Intn(120) + 10),
			SprayDuration: float64(rng.Intn(59) + 1),
			IsActive:      rng.Intn(2) == 0,
		})
	}
	data, _ := json.Marshal(map[string]any{"deviceOn": rng.Intn(4) != 0, "emotions": emotions})
	return post("POST /upload-manual", "/upload-manual", data)
}

func doUploadPhoto(body []byte) result {
	r := post("POST /upload-photo", "/upload-photo", body)
	// A photo without a detectable face is a valid answer, not a failure.
	if r.status == http.StatusBadRequest {
		r.err = false
	}
	return r
}

func doGetDevice() result {
	start := time.Now()
	resp, err := httpClient.Get(*baseURL + "/device")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /device", 0, lat, true}
	}
	drain(resp)
	return result{"GET /device", resp.StatusCode, lat, resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound}
}

func post(endpoint, path string, data []byte) result {
	start := time.Now()
	resp, err := httpClient.Post(*baseURL+path, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	drain(resp)
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
