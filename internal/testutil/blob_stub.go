package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBlobStoreDown is returned by BlobStoreStub when a failure is injected.
var ErrBlobStoreDown = errors.New("blob store unavailable")

// BlobStoreStub is an in-memory blob store. FailOnCall makes the n-th Store
// call (1-based) fail.
type BlobStoreStub struct {
	mu         sync.Mutex
	FailOnCall int
	calls      int
	Stored     []string
	Deleted    []string
}

func NewBlobStoreStub() *BlobStoreStub {
	return &BlobStoreStub{}
}

func (s *BlobStoreStub) Store(_ context.Context, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.FailOnCall > 0 && s.calls == s.FailOnCall {
		return "", ErrBlobStoreDown
	}
	url := fmt.Sprintf("/uploads/blob-%d-%d.webp", s.calls, len(data))
	s.Stored = append(s.Stored, url)
	return url, nil
}

func (s *BlobStoreStub) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, url)
	return nil
}

// Calls reports how many times Store was invoked.
func (s *BlobStoreStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
