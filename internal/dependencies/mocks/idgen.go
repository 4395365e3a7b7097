package mocks

import (
	"fmt"
	"sync"

	"github.com/NetroScript/tf2pickup-server/internal/dependencies/idgen"
)

// MockIDGen is a mock implementation of idgen.Generator for testing
type MockIDGen struct {
	mu sync.Mutex

	// IDs is a queue of results to return from NewID
	IDs   []string
	index int
}

// Ensure MockIDGen implements Generator
var _ idgen.Generator = (*MockIDGen)(nil)

// NewMockIDGen creates a new MockIDGen
func NewMockIDGen() *MockIDGen {
	return &MockIDGen{}
}

// NewID returns the next queued id, or a sequential "id-N" once the queue is drained
func (g *MockIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.index++
	if g.index <= len(g.IDs) {
		return g.IDs[g.index-1]
	}
	return fmt.Sprintf("id-%d", g.index)
}

// Queue adds values to the result queue
func (g *MockIDGen) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.IDs = append(g.IDs, ids...)
}
