// Stress drives concurrent order placements against a running server and
// reports how many succeeded versus sold out. Useful for eyeballing that
// stock never goes negative under load.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	productID := flag.String("product", "p1", "product to order")
	requests := flag.Int("n", 50, "number of concurrent orders")
	flag.Parse()

	var successCount atomic.Int32
	var rejectedCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			status, err := placeOrder(*addr, *productID, id)
			switch {
			case err != nil:
				failCount.Add(1)
			case status == 200:
				successCount.Add(1)
			default:
				rejectedCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	log.Printf("done in %s: %d ok, %d rejected, %d transport errors",
		elapsed, successCount.Load(), rejectedCount.Load(), failCount.Load())
}

func placeOrder(addr, productID string, id int) (int, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	body := fmt.Sprintf(`{"name":"user-%d","contact":"0300000%04d","email":"user-%d@example.com",`+
		`"address":"Street %d","items":[{"product":%q,"qty":1}]}`,
		id, id, id, id, productID)

	req := fmt.Sprintf("POST /api/orders HTTP/1.1\r\n"+
		"Host: %s\r\n"+
		"Content-Type: application/json\r\n"+
		"Content-Length: %d\r\n"+
		"\r\n%s", addr, len(body), body)

	if _, err := io.WriteString(conn, req); err != nil {
		return 0, err
	}

	// The server closes after one response, so read to EOF.
	raw, err := io.ReadAll(conn)
	if err != nil {
		return 0, err
	}

	line, _, _ := strings.Cut(string(raw), "\r\n")
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("bad status line %q", line)
	}
	var status int
	if _, err := fmt.Sscanf(fields[1], "%d", &status); err != nil {
		return 0, fmt.Errorf("bad status %q", fields[1])
	}
	return status, nil
}
