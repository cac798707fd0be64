package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/guttosm/sectorpulse/config"
	"github.com/guttosm/sectorpulse/internal/greeting"
	"github.com/guttosm/sectorpulse/internal/htmlpatch"
)

type dummyHandler struct{}

func (d dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestStartServerAndShutdown(t *testing.T) {
	srv := startServer(dummyHandler{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	// Give server a moment to start
	time.Sleep(50 * time.Millisecond)

	shutdownCtx, c := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_SignalPath(t *testing.T) {
	srv := startServer(dummyHandler{}, "0")

	cleaned := make(chan struct{}, 1)
	go func() {
		gracefulShutdown(context.Background(), srv, func() { close(cleaned) })
	}()

	// Give the goroutine time to set up signal notifications
	time.Sleep(50 * time.Millisecond)

	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after SIGTERM")
	}
}

func testConfig() config.Config {
	return config.Config{
		Build:    config.BuildConfig{InputPath: "input.txt", HTMLPath: "index.html", ListName: "stockInfoList"},
		Greeting: config.GreetingConfig{Dir: "."},
		Server:   config.ServerConfig{Port: "8080"},
	}
}

func TestParseOptions(t *testing.T) {
	o, err := parseOptions(nil, testConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := options{mode: "build", input: "input.txt", html: "index.html", list: "stockInfoList", greetDir: ".", port: "8080"}
	if o != want {
		t.Fatalf("defaults: got %+v want %+v", o, want)
	}

	o, err = parseOptions([]string{"--mode", "all", "--input", "/tmp/in.tsv", "--list", "etfList", "--greet-dir", "/tmp", "--snapshot", "--port=9090"}, testConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want = options{mode: "all", input: "/tmp/in.tsv", html: "index.html", list: "etfList", greetDir: "/tmp", snapshot: true, port: "9090"}
	if o != want {
		t.Fatalf("overrides: got %+v want %+v", o, want)
	}

	if _, err := parseOptions([]string{"--bogus"}, testConfig()); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

const listing = "시장\t업종구분\t종목명\t종목코드\t시가총액\t유통비율\n" +
	"K\t전기/전자\t삼성전자\t005930\t3000\t50.00\n" +
	"K\t전기/전자\tSK하이닉스\t000660\t1000\t20.00\n"

func workspace(t *testing.T) options {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "input.txt")
	page := filepath.Join(dir, "index.html")
	if err := os.WriteFile(in, []byte(listing), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(page, []byte("<script>const stockInfoList = [];</script>"), 0o600); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return options{input: in, html: page, list: htmlpatch.DefaultListName, greetDir: dir}
}

func TestRun_Modes(t *testing.T) {
	now := time.Now()

	o := workspace(t)
	o.mode = "build"
	if err := run(context.Background(), o); err != nil {
		t.Fatalf("build: %v", err)
	}
	page, _ := os.ReadFile(o.html)
	if !strings.Contains(string(page), `"종목코드": "000660"`) {
		t.Fatalf("page not patched: %s", page)
	}

	o.mode = "inspect"
	if err := run(context.Background(), o); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	o.mode = "greet"
	if err := run(context.Background(), o); err != nil {
		t.Fatalf("greet: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(o.greetDir, "hello_*.txt"))
	if len(matches) == 0 {
		t.Fatalf("no greeting written")
	}

	o.mode = "nope"
	if err := run(context.Background(), o); !errors.Is(err, errUnknownMode) {
		t.Fatalf("want errUnknownMode, got %v", err)
	}

	o2 := workspace(t)
	if err := runAll(context.Background(), o2, now); err != nil {
		t.Fatalf("all: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(o2.greetDir, greeting.FileName(now)))
	if err != nil || string(got) != greeting.Message {
		t.Fatalf("greeting: %q err=%v", got, err)
	}
}

func TestRunAll_BuildFailureStillGreets(t *testing.T) {
	now := time.Now()
	o := workspace(t)
	o.input = filepath.Join(o.greetDir, "missing.txt")

	err := runAll(context.Background(), o, now)
	if !errors.Is(err, os.ErrNotExist) || !strings.HasPrefix(err.Error(), "build:") {
		t.Fatalf("want build error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(o.greetDir, greeting.FileName(now))); err != nil {
		t.Fatalf("greeting should still be written: %v", err)
	}
}
