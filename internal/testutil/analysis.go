package testutil

import (
	"context"
	"fmt"
	"sync"
)

// StubExtractor returns canned page texts. Paths without an entry fail.
type StubExtractor struct {
	mu    sync.Mutex
	Texts map[string]string
	calls []string
}

func NewStubExtractor(texts map[string]string) *StubExtractor {
	return &StubExtractor{Texts: texts}
}

func (e *StubExtractor) ExtractText(_ context.Context, path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, path)
	text, ok := e.Texts[path]
	if !ok {
		return "", fmt.Errorf("no text for %s", path)
	}
	return text, nil
}

// Calls returns the paths extracted so far, in order.
func (e *StubExtractor) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}
