package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"storefront/internal/adapter/storage"
	"storefront/internal/core/service"
	"storefront/internal/worker"
)

func decimalFrom(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

// startServer wires the full stack onto an ephemeral port with a fresh
// SQLite file and tears it down with the test.
func startServer(t *testing.T) (addr string, store *service.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err, "open sqlite")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())

	repo := storage.NewSQLiteRepository(db)
	require.NoError(t, repo.Init(ctx), "init schema")

	store = service.NewStore(repo, testLogger())
	require.NoError(t, store.Load(ctx), "load store")

	router := NewRouter(store, fakeStatic{}, Credentials{Username: "admin", Password: "admin123"}, testLogger())
	pool := worker.NewPool(4, 32, testLogger())
	server := NewServer("127.0.0.1:0", router, pool, testLogger())
	require.NoError(t, server.Listen(), "listen")

	done := make(chan struct{})
	go func() {
		defer close(done)
		server.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		pool.Close()
		pool.Wait()
	})

	return server.Addr(), store
}

// doRequest performs one raw request/response cycle the way a browser
// without keep-alive would: write, read to EOF, parse.
func doRequest(t *testing.T, addr, method, target, contentType, body string) (int, string) {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err, "dial server")
	defer conn.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\nHost: %s\r\n", method, target, addr)
	if body != "" {
		fmt.Fprintf(&b, "Content-Type: %s\r\nContent-Length: %d\r\n", contentType, len(body))
	}
	b.WriteString("\r\n")
	b.WriteString(body)

	_, err = io.WriteString(conn, b.String())
	require.NoError(t, err, "write request")

	raw, err := io.ReadAll(conn)
	require.NoError(t, err, "read response")

	head, respBody, found := strings.Cut(string(raw), "\r\n\r\n")
	require.True(t, found, "response missing header separator: %q", raw)

	statusLine, _, _ := strings.Cut(head, "\r\n")
	fields := strings.Fields(statusLine)
	require.GreaterOrEqual(t, len(fields), 2, "bad status line %q", statusLine)
	status, err := strconv.Atoi(fields[1])
	require.NoError(t, err, "bad status in %q", statusLine)

	return status, respBody
}

func TestServer_AddProductThenList(t *testing.T) {
	addr, _ := startServer(t)

	status, body := doRequest(t, addr, "POST", "/api/addProduct", "application/json",
		`{"title":"Mug","price":500,"stock":10}`)
	require.Equal(t, 200, status, "addProduct response: %s", body)

	status, body = doRequest(t, addr, "GET", "/api/products", "", "")
	require.Equal(t, 200, status)

	var products []productPayload
	require.NoError(t, json.Unmarshal([]byte(body), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].Title)
	assert.Equal(t, "500.00", products[0].Price)
	assert.Equal(t, 10, products[0].Stock)
	assert.Regexp(t, `^p\d+$`, products[0].ID)
}

func TestServer_PlaceOrderEndToEnd(t *testing.T) {
	addr, store := startServer(t)

	status, _ := doRequest(t, addr, "POST", "/api/addProduct", "application/json",
		`{"title":"Lamp","price":2000,"stock":5}`)
	require.Equal(t, 200, status)

	orderBody := `{"name":"Ali","contact":"0300","email":"a@b.c","address":"Street 1",` +
		`"items":[{"product":"p1","qty":1}]}`
	status, body := doRequest(t, addr, "POST", "/api/orders", "application/json", orderBody)
	require.Equal(t, 200, status, "order response: %s", body)

	var placed orderResponse
	require.NoError(t, json.Unmarshal([]byte(body), &placed))
	assert.Equal(t, "success", placed.Status)
	assert.Regexp(t, `^O\d+$`, placed.OrderID)

	status, body = doRequest(t, addr, "GET", "/api/orders", "", "")
	require.Equal(t, 200, status)

	var orders []orderPayload
	require.NoError(t, json.Unmarshal([]byte(body), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "2000.00", orders[0].ProductPrice)
	assert.Equal(t, "180.00", orders[0].DeliveryCharges)
	assert.Equal(t, "2180.00", orders[0].TotalAmount)

	after, ok := store.GetProduct("p1")
	require.True(t, ok)
	assert.Equal(t, 4, after.Stock, "stock must decrement by 1")
}

func TestServer_Login(t *testing.T) {
	addr, _ := startServer(t)

	status, body := doRequest(t, addr, "POST", "/api/login", "application/x-www-form-urlencoded",
		"username=admin&password=admin123")
	require.Equal(t, 200, status)
	assert.Equal(t, "success", body)

	status, body = doRequest(t, addr, "POST", "/api/login", "application/x-www-form-urlencoded",
		"username=admin&password=nope")
	require.Equal(t, 401, status)
	assert.Equal(t, "Invalid credentials", body)
}

func TestServer_OptionsPreflight(t *testing.T) {
	addr, _ := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "OPTIONS /api/orders HTTP/1.1\r\nHost: x\r\n\r\n")
	require.NoError(t, err)

	raw, err := io.ReadAll(conn)
	require.NoError(t, err)

	resp := string(raw)
	assert.Contains(t, resp, "HTTP/1.1 200")
	assert.Contains(t, resp, "Access-Control-Allow-Origin: *")
}

func TestServer_TruncatedBodyGetsNoResponse(t *testing.T) {
	addr, store := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	// Declare more body than we send, then disconnect.
	_, err = io.WriteString(conn, "POST /api/addProduct HTTP/1.1\r\nContent-Length: 500\r\n\r\n{\"title\":")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// The handler never ran: nothing was added.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, store.ListProducts())
}

func TestServer_QueuedRequestCompletesAcrossShutdown(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewSQLiteRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	store := service.NewStore(repo, testLogger())
	require.NoError(t, store.Load(context.Background()))

	router := NewRouter(store, fakeStatic{}, Credentials{Username: "admin", Password: "admin123"}, testLogger())
	pool := worker.NewPool(1, 8, testLogger())
	server := NewServer("127.0.0.1:0", router, pool, testLogger())
	require.NoError(t, server.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		server.Serve(ctx)
	}()

	// Tie up the only worker so the next connection waits in the queue.
	release := make(chan struct{})
	require.True(t, pool.Submit(func() { <-release }))

	conn, err := net.Dial("tcp", server.Addr())
	require.NoError(t, err)
	defer conn.Close()

	body := `{"title":"Mug","price":500,"stock":10}`
	_, err = fmt.Fprintf(conn,
		"POST /api/addProduct HTTP/1.1\r\nHost: x\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s",
		len(body), body)
	require.NoError(t, err)

	// Let the accept loop queue the connection, then begin shutdown
	// before the worker ever sees it.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	close(release)
	pool.Close()
	pool.Wait()

	raw, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "HTTP/1.1 200", "queued request must be served, not failed")
	require.Len(t, store.ListProducts(), 1, "queued request must reach the store")
}

func TestServer_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storefront.db")

	open := func() (*sql.DB, *service.Store) {
		db, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		db.SetMaxOpenConns(1)

		repo := storage.NewSQLiteRepository(db)
		require.NoError(t, repo.Init(context.Background()))
		store := service.NewStore(repo, testLogger())
		require.NoError(t, store.Load(context.Background()))
		return db, store
	}

	db, store := open()
	p, err := store.AddProduct(context.Background(), "Mug", decimalFrom(t, "500"), "", 10)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, store = open()
	defer db.Close()

	got, ok := store.GetProduct(p.ID)
	require.True(t, ok, "product lost across restart")
	assert.Equal(t, 10, got.Stock)

	// The allocator resumes past the persisted ids.
	next, err := store.AddProduct(context.Background(), "Plate", decimalFrom(t, "300"), "", 1)
	require.NoError(t, err)
	assert.Equal(t, "p2", next.ID)
}
