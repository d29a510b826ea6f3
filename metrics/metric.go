// Package metrics - Running evaluation statistics accumulated over batches of predictions.
package metrics

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

var (
	// ErrShapeMismatch is returned by Update when the prediction and label tensors cannot be
	// reconciled.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrComputeBeforeUpdate is returned by Compute when nothing has been accumulated since the
	// last Reset.
	ErrComputeBeforeUpdate = errors.New("compute called before update")
)

// Metric is a stateful accumulator driven through the reset, update, compute lifecycle.
//
// Implementations are not safe for concurrent use. Callers serialize access per instance.
type Metric interface {
	// Reset clears all accumulated state.
	Reset()
	// Update folds one batch of predictions and labels into the accumulated state.
	//
	// A failed Update leaves the state as it was before the call.
	Update(predictions, labels tensor.Tensor) error
	// Compute returns the statistic for everything accumulated since the last Reset.
	Compute() (float64, error)
}
