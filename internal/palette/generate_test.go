package palette

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// scriptedCompleter returns queued responses in order.
type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ string) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		return "", fmt.Errorf("unexpected call %d", i)
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.responses[i], err
}

const goodResponse = "#ff6432 #c8b43c #1e78c8 #ffc896 #505050 #f0f0e6"

func TestGenerateFromDescription(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{goodResponse}}
	g := NewGenerator(llm, 6)

	p, err := g.FromDescription(context.Background(), "warm sunset", nil)
	if err != nil {
		t.Fatalf("FromDescription failed: %v", err)
	}
	if len(p.Colors) != 6 {
		t.Errorf("got %d colors, want 6", len(p.Colors))
	}
	if p.Source != models.ProvenanceGenerated {
		t.Errorf("source = %s", p.Source)
	}
	if llm.calls != 1 {
		t.Errorf("expected 1 LLM call, got %d", llm.calls)
	}
}

func TestGenerateRetriesOnceOnBadShape(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{"sorry, here are three: #111111 #222222 #333333", goodResponse}}
	g := NewGenerator(llm, 6)

	p, err := g.FromDescription(context.Background(), "ocean", nil)
	if err != nil {
		t.Fatalf("FromDescription failed after retry: %v", err)
	}
	if llm.calls != 2 {
		t.Errorf("expected 2 LLM calls, got %d", llm.calls)
	}
	if len(p.Colors) != 6 {
		t.Errorf("got %d colors, want 6", len(p.Colors))
	}
}

func TestGenerateFailsAfterBoundedRetry(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{"no colors here", "still nothing"}}
	g := NewGenerator(llm, 6)

	_, err := g.FromDescription(context.Background(), "ocean", nil)
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
	if llm.calls != 2 {
		t.Errorf("expected exactly 2 LLM calls, got %d", llm.calls)
	}
}

func TestGenerateTransportErrorRetries(t *testing.T) {
	llm := &scriptedCompleter{
		responses: []string{"", goodResponse},
		errs:      []error{fmt.Errorf("connection refused")},
	}
	g := NewGenerator(llm, 6)

	if _, err := g.FromDescription(context.Background(), "forest", nil); err != nil {
		t.Fatalf("FromDescription failed: %v", err)
	}
}

func TestGenerateNilLLM(t *testing.T) {
	g := NewGenerator(nil, 6)
	_, err := g.FromDescription(context.Background(), "anything", nil)
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("want GenerationError for nil LLM, got %v", err)
	}
}
