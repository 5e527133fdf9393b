package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/satzbau/internal/store"
)

func TestLoggingProvider_PersistsEvents(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"german":"Brot","frequency":7}`), Usage: Usage{InputTokens: 12, OutputTokens: 8}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := WithLogging(mock, "mock", s.EventRepo(), logger)

	ctx := WithPurpose(context.Background(), PurposeExercise)
	if _, err := p.Generate(ctx, Request{System: "sys", Schema: testSchema()}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := p.Generate(WithPurpose(context.Background(), PurposeGrading), Request{}); err == nil {
		t.Fatal("expected rate limit error")
	}

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	failed, ok := events[0], events[1]
	if failed.Success || failed.Purpose != PurposeGrading || failed.ErrorMessage == "" {
		t.Fatalf("unexpected failed event: %+v", failed)
	}
	if !ok.Success || ok.Purpose != PurposeExercise || ok.InputTokens != 12 {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[schema: test-object]") {
		t.Fatalf("request body missing schema: %q", ok.RequestBody)
	}
	if !strings.Contains(buf.String(), "llm request failed") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestLoggingProvider_NilEvents(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), "mock", nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected model 'mock', got %q", p.ModelID())
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini-2024-07-18")
	if c == nil || c.InputPerMTok != 0.15 {
		t.Fatalf("expected dated model to resolve to base price, got %+v", c)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected unknown model to have no price")
	}
}
