package mocks

import (
	"github.com/mcoot/brettonwoods/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// FloatResults is a queue of results to return from Float64
	FloatResults []float64
	floatIndex   int

	// Default is returned once the queue is exhausted
	Default float64
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom whose unqueued draws are 0.5,
// which maps to a zero shock in the economic model
func NewMockRandom() *MockRandom {
	return &MockRandom{Default: 0.5}
}

// Float64 returns the next queued result, or Default if none remaining
func (r *MockRandom) Float64() float64 {
	if r.floatIndex >= len(r.FloatResults) {
		return r.Default
	}
	result := r.FloatResults[r.floatIndex]
	r.floatIndex++
	return result
}

// QueueFloat adds values to the Float64 result queue
func (r *MockRandom) QueueFloat(values ...float64) {
	r.FloatResults = append(r.FloatResults, values...)
}

// Drawn returns how many queued values have been consumed
func (r *MockRandom) Drawn() int {
	return r.floatIndex
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.FloatResults = nil
	r.floatIndex = 0
}
