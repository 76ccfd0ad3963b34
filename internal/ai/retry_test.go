package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"freelance-assistant/internal/model"
)

func TestRetryCompleterExhaustsAttempts(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{err: fmt.Errorf("service unavailable")}
	r := NewRetryCompleter(stub, 3, discardLogger())

	_, err := r.Complete(context.Background(), Request{Prompt: "x"})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	var genErr *model.AIGenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected AIGenerationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected error to name attempt count, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "service unavailable") {
		t.Fatalf("expected final cause to surface, got %q", err.Error())
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", stub.calls)
	}
}

func TestRetryCompleterSucceedsMidway(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{err: fmt.Errorf("flaky"), failFirst: 2, text: "done"}
	r := NewRetryCompleter(stub, 3, discardLogger())

	text, err := r.Complete(context.Background(), Request{Prompt: "x"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if text != "done" {
		t.Fatalf("expected text from successful attempt, got %q", text)
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", stub.calls)
	}
}

// --- stubs ---

type stubCompleter struct {
	text      string
	err       error
	failFirst int // 前 N 次调用失败；0 表示始终失败（err 非空时）
	calls     int
	requests  []Request
}

func (s *stubCompleter) Complete(ctx context.Context, req Request) (string, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil && (s.failFirst == 0 || s.calls <= s.failFirst) {
		return "", s.err
	}
	return s.text, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
