// Package evaluation - Drives attached metrics over a stream of prediction/label batches.
package evaluation

import (
	"context"
	"io"

	"gorgonia.org/tensor"
)

// Batch is one step's worth of predictions and the matching labels.
type Batch struct {
	Predictions tensor.Tensor
	Labels      tensor.Tensor
}

// BatchSource yields batches until it returns io.EOF.
type BatchSource interface {
	Next(ctx context.Context) (Batch, error)
}

// SliceSource serves batches from memory.
type SliceSource struct {
	batches []Batch
	pos     int
}

// NewSliceSource creates a source that yields batches in order.
func NewSliceSource(batches ...Batch) *SliceSource {
	return &SliceSource{batches: batches}
}

// Next returns the next batch, or io.EOF once every batch has been served.
func (s *SliceSource) Next(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if s.pos >= len(s.batches) {
		return Batch{}, io.EOF
	}
	b := s.batches[s.pos]
	s.pos++
	return b, nil
}

// Rewind starts the source over from the first batch.
func (s *SliceSource) Rewind() {
	s.pos = 0
}
