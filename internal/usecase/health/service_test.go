package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

type mockPipelineChecker struct {
	err error
}

func (m *mockPipelineChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCachePinger{}, &mockPipelineChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, c := range []string{ComponentArtifacts, ComponentCache, ComponentPipeline} {
		if r.Checks[c] != CheckOK {
			t.Errorf("expected %s %q, got %q", c, CheckOK, r.Checks[c])
		}
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockCachePinger{err: errors.New("conn refused")}, &mockPipelineChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[ComponentCache])
	}
	if r.Checks[ComponentPipeline] != CheckOK {
		t.Errorf("expected pipeline %q, got %q", CheckOK, r.Checks[ComponentPipeline])
	}
}

func TestCheck_PipelineError(t *testing.T) {
	svc := New(&mockCachePinger{}, &mockPipelineChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentPipeline] != CheckError {
		t.Errorf("expected pipeline %q, got %q", CheckError, r.Checks[ComponentPipeline])
	}
}

func TestCheck_ArtifactsOnly(t *testing.T) {
	svc := New(nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 || r.Checks[ComponentArtifacts] != CheckOK {
		t.Errorf("expected only artifacts check, got %v", r.Checks)
	}
}

func TestCheck_NoCache_PipelineError(t *testing.T) {
	svc := New(nil, &mockPipelineChecker{err: errors.New("fail")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}
