package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, handler http.Handler) (*Server, context.CancelFunc, <-chan error) {
	t.Helper()

	srv := New(handler, Options{
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: 2 * time.Second,
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("server did not start in time")
	}

	return srv, cancel, done
}

func localURL(srv *Server) string {
	addr := srv.Addr()
	return "http://127.0.0.1:" + addr[strings.LastIndex(addr, ":")+1:]
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop in time")
		return nil
	}
}

func TestServer_ServesUntilCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv, cancel, done := startServer(t, handler)

	resp, err := http.Get(localURL(srv) + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("unexpected body: %q", body)
	}

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestServer_ShutdownOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownFunc {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	srv, cancel, done := startServer(t, http.NotFoundHandler())
	srv.OnShutdown("database", record("database"))
	srv.OnShutdown("redis", record("redis"))
	srv.OnShutdown("registration", record("registration"))

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.Join(order, ",")
	if got != "registration,redis,database" {
		t.Errorf("expected LIFO shutdown, got %s", got)
	}
}

func TestServer_ShutdownErrors(t *testing.T) {
	errBoom := errors.New("boom")
	ran := false

	srv, cancel, done := startServer(t, http.NotFoundHandler())
	srv.OnShutdown("last", func(ctx context.Context) error {
		ran = true
		return nil
	})
	srv.OnShutdown("failing", func(ctx context.Context) error { return errBoom })

	cancel()
	err := waitDone(t, done)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected shutdown error to surface, got %v", err)
	}
	if !strings.Contains(err.Error(), "failing") {
		t.Errorf("expected component name in error, got %v", err)
	}
	if !ran {
		t.Error("remaining components should still be stopped after a failure")
	}
}

func TestServer_ListenFailure(t *testing.T) {
	srv, cancel, done := startServer(t, http.NotFoundHandler())
	defer func() {
		cancel()
		_ = waitDone(t, done)
	}()

	port := srv.Addr()[strings.LastIndex(srv.Addr(), ":")+1:]
	clash := New(http.NotFoundHandler(), Options{ShutdownTimeout: time.Second}, testLogger())
	clash.httpServer.Addr = ":" + port

	if err := clash.Run(context.Background()); err == nil {
		t.Fatal("expected listen error on a bound port")
	}
}
