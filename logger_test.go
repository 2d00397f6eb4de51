package fractal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestNopHandler_Enabled(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
}

func TestNopHandler_Handle(t *testing.T) {
	h := nopHandler{}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
}

func TestNopHandler_WithAttrs(t *testing.T) {
	h := nopHandler{}
	got := h.WithAttrs([]slog.Attr{slog.String("key", "val")})
	if _, ok := got.(nopHandler); !ok {
		t.Errorf("nopHandler.WithAttrs() returned %T, want nopHandler", got)
	}
}

func TestNopHandler_WithGroup(t *testing.T) {
	h := nopHandler{}
	got := h.WithGroup("group")
	if _, ok := got.(nopHandler); !ok {
		t.Errorf("nopHandler.WithGroup() returned %T, want nopHandler", got)
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	// Default logger must be disabled at all levels.
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	SetLogger(custom)

	got := Logger()
	if got != custom {
		t.Error("Logger() did not return the custom logger set via SetLogger")
	}

	// Verify output is captured.
	got.Info("test message", "key", "value")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("expected log output to contain 'test message', got: %s", buf.String())
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	// First set a real logger.
	SetLogger(slog.Default())

	// Then set nil to restore silence.
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) should set nop logger, not nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestSetLoggerReachesNewPools(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	pool, err := NewWorkerPool(2)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	pool.Close()

	if !strings.Contains(buf.String(), "worker pool started") {
		t.Errorf("expected pool startup to be logged, got: %s", buf.String())
	}
}

// captureJSON installs a JSON logger for the duration of the test and
// returns a function that decodes the records written so far.
func captureJSON(t *testing.T) func() []map[string]any {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var (
		mu  sync.Mutex
		buf bytes.Buffer
	)
	SetLogger(slog.New(slog.NewJSONHandler(&lockedWriter{mu: &mu, w: &buf},
		&slog.HandlerOptions{Level: slog.LevelDebug})))

	return func() []map[string]any {
		mu.Lock()
		defer mu.Unlock()
		var records []map[string]any
		dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
		for dec.More() {
			var r map[string]any
			if err := dec.Decode(&r); err != nil {
				t.Fatalf("decode log record: %v", err)
			}
			records = append(records, r)
		}
		return records
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func findRecord(records []map[string]any, msg string) map[string]any {
	for _, r := range records {
		if r["msg"] == msg {
			return r
		}
	}
	return nil
}

func TestRenderFaultIsLogged(t *testing.T) {
	records := captureJSON(t)

	panicky := KernelFunc(func(Params) Shader {
		return func(float64, float64) color.RGBA { panic("boom") }
	})
	pool, err := NewWorkerPool(1)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Close()
	s, err := NewScene(4, 4, 1, WithKernel(panicky))
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}
	_ = s.Render(context.Background(), pool, DefaultParams())

	r := findRecord(records(), "fractal: render fault")
	if r == nil {
		t.Fatal("no render fault record")
	}
	if r["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", r["level"])
	}
	if r["rows"] != "0-4" {
		t.Errorf("rows = %v, want 0-4", r["rows"])
	}
	if got, _ := r["error"].(string); !strings.Contains(got, "boom") {
		t.Errorf("error = %q, want the panic value", got)
	}
	if findRecord(records(), "fractal: render finished") == nil {
		t.Error("no render finished record")
	}
}

func TestRenderRejectionIsLogged(t *testing.T) {
	records := captureJSON(t)

	release := make(chan struct{})
	pool, err := NewWorkerPool(1)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Close()
	s, err := NewScene(2, 2, 1, WithKernel(KernelFunc(func(Params) Shader {
		return func(float64, float64) color.RGBA {
			<-release
			return color.RGBA{A: 255}
		}
	})))
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}

	job, err := s.Start(pool, DefaultParams())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := s.Start(pool, DefaultParams()); !errors.Is(err, ErrRenderInFlight) {
		t.Errorf("second Start() error = %v, want ErrRenderInFlight", err)
	}
	close(release)
	_ = job.Wait(context.Background())

	r := findRecord(records(), "fractal: render rejected, previous job in flight")
	if r == nil {
		t.Fatal("no rejection record")
	}
	if r["generation"] != float64(1) {
		t.Errorf("generation = %v, want 1", r["generation"])
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	const goroutines = 100

	// Concurrent readers.
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := Logger()
			if l == nil {
				t.Error("Logger() returned nil during concurrent access")
			}
			// Exercise the logger; must not panic.
			l.Debug("concurrent read")
		}()
	}

	// Concurrent writers.
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}

	wg.Wait()
}

func BenchmarkLoggerLoad(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		l := Logger()
		_ = l
	}
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	// Benchmark the hot path: calling a log method on a disabled logger.
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("message", "key", "value")
	}
}
