// Package main provides a performance benchmarking tool for the assetload engine.
// It serves synthetic images from a local HTTP server with injected latency and
// measures fetch and preload batches of several sizes, running each batch multiple
// times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Usage: go run ./benchmark [latency]
//
//	latency: Server-side delay per request (default 20ms)
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"net"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/huangsam/assetload/core"
	"github.com/huangsam/assetload/internal/fetch"
	"github.com/huangsam/assetload/schema"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Workload    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// Workload is one batch of synthetic images.
type Workload struct {
	Name  string
	Count int
	Side  int // width and height in pixels
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Latency     time.Duration
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Workloads   []Workload
}

func main() {
	latency := 20 * time.Millisecond
	if len(os.Args) == 2 {
		d, err := time.ParseDuration(os.Args[1])
		if err != nil {
			fmt.Printf("Usage: %s [latency]\n", os.Args[0])
			os.Exit(1)
		}
		latency = d
	}

	config := BenchmarkConfig{
		Latency:     latency,
		Timeout:     2 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Workloads: []Workload{
			{Name: "icons", Count: 64, Side: 32},
			{Name: "thumbnails", Count: 128, Side: 256},
			{Name: "photos", Count: 32, Side: 1024},
		},
	}

	baseURL, stop, err := startServer(config)
	if err != nil {
		fmt.Printf("Failed to start image server: %v\n", err)
		os.Exit(1)
	}
	defer stop()

	results := runBenchmarks(config, baseURL)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// startServer serves /<side>/<n>.png as a solid PNG of the given side after the configured latency.
func startServer(config BenchmarkConfig) (string, func(), error) {
	images := make(map[int][]byte)
	for _, w := range config.Workloads {
		var buf bytes.Buffer
		img := imaging.New(w.Side, w.Side, color.NRGBA{R: 40, G: 120, B: 200, A: 255})
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return "", nil, err
		}
		images[w.Side] = buf.Bytes()
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			time.Sleep(config.Latency)
			var side, n int
			if _, err := fmt.Sscanf(string(ctx.Path()), "/%d/%d.png", &side, &n); err != nil {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}
			body, ok := images[side]
			if !ok {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}
			ctx.SetContentType("image/png")
			ctx.SetBody(body)
		},
	}
	go func() { _ = server.Serve(ln) }()

	return "http://" + ln.Addr().String(), func() { _ = server.Shutdown() }, nil
}

// runBenchmarks executes all benchmark tests across configured workloads
func runBenchmarks(config BenchmarkConfig, baseURL string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d workloads, %v latency, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Workloads), config.Latency, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, w := range config.Workloads {
		fmt.Printf("Benchmarking %s (%d x %dpx)\n", w.Name, w.Count, w.Side)

		uris := make([]string, w.Count)
		for i := range uris {
			uris[i] = fmt.Sprintf("%s/%d/%d.png", baseURL, w.Side, i)
		}

		results = append(results, runBenchmarkSuite(config, w, "fetch", uris))
		results = append(results, runBenchmarkSuite(config, w, "preload", uris))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, w Workload, command string, uris []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, w.Name)

	// Helper to run a benchmark phase
	runPhase := func(useCache bool, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, uris, useCache, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase(false, config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase(true, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Workload:    w.Name,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a batch multiple times and returns cold time and warm times.
// With useCache the engine is shared across runs; otherwise every run gets a fresh one.
func runBenchmark(config BenchmarkConfig, command string, uris []string, useCache bool, numRuns int) (coldTime float64, warmTimes []float64) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := fetch.NewClient(fetch.Options{Timeout: config.Timeout, Logger: logger})
	newEngine := func() *core.Engine {
		return core.NewEngine(client, core.Options{
			MaxEntries:     len(uris),
			RetryBaseDelay: 10 * time.Millisecond,
			Workers:        config.Workers,
			Logger:         logger,
		})
	}

	shared := newEngine()
	defer shared.Close()

	var times []float64
	for run := 1; run <= numRuns; run++ {
		engine := shared
		if !useCache {
			engine = newEngine()
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		ok := runOnce(ctx, engine, client, command, uris, useCache)
		elapsed := time.Since(start)
		cancel()

		if !useCache {
			engine.Close()
		}
		if ok {
			times = append(times, elapsed.Seconds())
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// runOnce runs one batch and reports whether every resource loaded.
func runOnce(ctx context.Context, engine *core.Engine, client *fetch.Client, command string, uris []string, useCache bool) bool {
	switch command {
	case "preload":
		for _, res := range engine.PreloadImages(ctx, uris) {
			if res.URI == nil {
				return false
			}
		}
		return true
	default:
		results := engine.FetchAll(ctx, client, uris, func(uri string) schema.LoadOptions {
			opts := schema.DefaultLoadOptions()
			opts.Source = schema.Source{URI: uri}
			opts.EnableLazy = false
			opts.EnableCache = useCache
			return opts
		})
		for _, res := range results {
			if res.State != schema.LoadedState {
				return false
			}
		}
		return true
	}
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/assetload_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"workload", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Workload, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "fetch", "Fetch:")
	printCommandSummary(results, "preload", "Preload:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Workload, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
