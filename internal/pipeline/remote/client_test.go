package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kailas-cloud/homedex/internal/domain/estimate"
	"github.com/kailas-cloud/homedex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

func testFeatures() *estimate.Features {
	return &estimate.Features{
		PropertyType: "flat",
		Sector:       "sector 45",
		Bedrooms:     3,
		BuiltUpArea:  1500,
	}
}

func TestPredict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(req.Rows) != 1 {
			t.Errorf("expected 1 row, got %d", len(req.Rows))
			return
		}
		row := req.Rows[0]
		if row[estimate.ColSector] != "sector 45" {
			t.Errorf("sector = %v", row[estimate.ColSector])
		}
		if row[estimate.ColBedrooms] != 3.0 {
			t.Errorf("bedRoom = %v", row[estimate.ColBedrooms])
		}
		_, _ = w.Write([]byte(`{"predictions":[0.6931]}`))
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL + "/"})
	got, err := c.Predict(context.Background(), testFeatures())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0.6931 {
		t.Errorf("Predict = %f, want 0.6931", got)
	}
}

func TestPredict_ServerRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"Found unknown categories ['sector 999']"}`))
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL})
	_, err := c.Predict(context.Background(), testFeatures())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d", se.Status)
	}
	if !strings.Contains(se.Detail, "unknown categories") {
		t.Errorf("Detail = %q", se.Detail)
	}
}

func TestPredict_EmptyPredictions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[]}`))
	}))
	defer server.Close()

	if _, err := New(&Config{BaseURL: server.URL}).Predict(context.Background(), testFeatures()); err == nil {
		t.Fatal("expected error for empty predictions")
	}
}

func TestPredict_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Predict(context.Background(), testFeatures())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBreaker_OpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL, FailureThreshold: 2, OpenTimeout: time.Minute})
	ctx := context.Background()
	for range 2 {
		if _, err := c.Predict(ctx, testFeatures()); err == nil {
			t.Fatal("expected server error")
		}
	}

	_, err := c.Predict(ctx, testFeatures())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL, FailureThreshold: 1})
	for range 3 {
		_, err := c.Predict(context.Background(), testFeatures())
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatal("client errors must not open the breaker")
		}
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3", hits.Load())
	}
}

func TestLevels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/levels" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"levels":{"sector":["sector 45","sector 1","sector 45"]}}`))
	}))
	defer server.Close()

	levels, err := New(&Config{BaseURL: server.URL}).Levels(context.Background())
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	got := levels[estimate.ColSector]
	if len(got) != 2 || got[0] != "sector 1" || got[1] != "sector 45" {
		t.Errorf("sector levels = %v", got)
	}
}

func TestHealthCheck(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL, FailureThreshold: 10})
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
	healthy.Store(false)
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected unhealthy")
	}
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"bad input"}`, "bad input"},
		{"plain failure\n", "plain failure"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := extractDetail([]byte(tc.body)); got != tc.want {
			t.Errorf("extractDetail(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}
