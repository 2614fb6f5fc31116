// Command loadtest drives a running gateway with a constant request rate and
// reports latency percentiles.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

func main() {
	target := flag.String("target", "http://localhost:8080", "gateway base URL")
	apiKey := flag.String("key", "", "gateway API key")
	model := flag.String("model", "openai/gpt-4o-mini", "composite model id to request")
	rps := flag.Int("rate", 50, "requests per second")
	duration := flag.Duration("duration", 10*time.Second, "duration of the test")
	stream := flag.Bool("stream", false, "request streaming responses")
	flag.Parse()

	if *apiKey == "" {
		log.Fatal("-key is required")
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":  *model,
		"stream": *stream,
		"messages": []map[string]string{
			{"role": "user", "content": "Say hello."},
		},
	})
	if err != nil {
		log.Fatalf("failed to build request body: %v", err)
	}

	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: http.MethodPost,
		URL:    *target + "/v1/chat/completions",
		Body:   body,
		Header: http.Header{
			"Content-Type":  []string{"application/json"},
			"Authorization": []string{"Bearer " + *apiKey},
		},
	})

	attacker := vegeta.NewAttacker()
	rate := vegeta.Rate{Freq: *rps, Per: time.Second}

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, *duration, "chat-completions") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Printf("requests: %d\n", metrics.Requests)
	fmt.Printf("success:  %.2f%%\n", metrics.Success*100)
	fmt.Printf("p50:      %s\n", metrics.Latencies.P50)
	fmt.Printf("p95:      %s\n", metrics.Latencies.P95)
	fmt.Printf("p99:      %s\n", metrics.Latencies.P99)
	fmt.Printf("max:      %s\n", metrics.Latencies.Max)

	for code, count := range metrics.StatusCodes {
		fmt.Printf("status %s: %d\n", code, count)
	}

	if len(metrics.Errors) > 0 {
		fmt.Println("errors:")
		for _, e := range metrics.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
}
