package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

// Small probe used after deploys: hits the health and message listing
// endpoints a few times and reports status plus latency.
func main() {
	base := flag.String("url", "http://localhost:3001", "server base URL")
	n := flag.Int("n", 5, "requests per endpoint")
	timeout := flag.Duration("timeout", 3*time.Second, "per-request timeout")
	flag.Parse()

	client := &fasthttp.Client{
		Name:         "minichat-smoke",
		ReadTimeout:  *timeout,
		WriteTimeout: *timeout,
	}

	failed := false
	for _, path := range []string{"/healthz", "/readyz", "/messages"} {
		if !probe(client, *base+path, *n, *timeout) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func probe(client *fasthttp.Client, url string, n int, timeout time.Duration) bool {
	var total time.Duration
	var worst time.Duration
	ok := true

	for i := 0; i < n; i++ {
		req := fasthttp.AcquireRequest()
		res := fasthttp.AcquireResponse()
		req.SetRequestURI(url)

		start := time.Now()
		err := client.DoTimeout(req, res, timeout)
		elapsed := time.Since(start)

		status := 0
		if err == nil {
			status = res.StatusCode()
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(res)

		if err != nil {
			fmt.Printf("FAIL %s: %v\n", url, err)
			ok = false
			continue
		}
		if status != fasthttp.StatusOK {
			fmt.Printf("FAIL %s: status %d\n", url, status)
			ok = false
		}
		total += elapsed
		if elapsed > worst {
			worst = elapsed
		}
	}

	if ok {
		fmt.Printf("OK   %s: %d requests, avg %v, worst %v\n", url, n, total/time.Duration(n), worst)
	}
	return ok
}
