package metrics

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func dense(shape []int, backing interface{}) *tensor.Dense {
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(backing))
}

// TestAccuracyTwoClassBatch validates argmax decisions on an explicit class axis.
func TestAccuracyTwoClassBatch(t *testing.T) {
	acc := NewAccuracy()

	preds := dense([]int{2, 2}, []float64{0.1, 0.9, 0.8, 0.2})
	labels := dense([]int{2}, []int64{1, 0})

	require.NoError(t, acc.Update(preds, labels))
	assert.Equal(t, 2, acc.NumCorrect())
	assert.Equal(t, 2, acc.NumExamples())

	got, err := acc.Compute()
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestAccuracyNeverMatches(t *testing.T) {
	acc := NewAccuracy()

	preds := dense([]int{3, 3}, []float64{
		0.7, 0.2, 0.1,
		0.1, 0.8, 0.1,
		0.3, 0.3, 0.4,
	})
	labels := dense([]int{3}, []int64{2, 0, 1})

	require.NoError(t, acc.Update(preds, labels))

	got, err := acc.Compute()
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

// TestAccuracyBinaryLift checks that per-example probabilities score the same as the explicit
// [1-p, p] expansion.
func TestAccuracyBinaryLift(t *testing.T) {
	probs := []float64{0.2, 0.7, 0.5, 0.9}
	targets := []int64{0, 1, 1, 0}

	binary := NewAccuracy()
	require.NoError(t, binary.Update(dense([]int{4}, probs), dense([]int{4}, targets)))

	expanded := make([]float64, 0, 2*len(probs))
	for _, p := range probs {
		expanded = append(expanded, 1-p, p)
	}
	categorical := NewAccuracy()
	require.NoError(t, categorical.Update(dense([]int{4, 2}, expanded), dense([]int{4}, targets)))

	want, err := categorical.Compute()
	require.NoError(t, err)
	got, err := binary.Compute()
	require.NoError(t, err)

	assert.Equal(t, want, got)
	// 0.5 ties to class 0, so only the first two examples match.
	assert.Equal(t, 0.5, got)
	assert.Equal(t, 2, binary.NumCorrect())
}

func TestAccuracyComputeBeforeUpdate(t *testing.T) {
	acc := NewAccuracy()

	_, err := acc.Compute()
	assert.True(t, errors.Is(err, ErrComputeBeforeUpdate))

	require.NoError(t, acc.Update(dense([]int{1, 2}, []float64{0.3, 0.7}), dense([]int{1}, []int64{1})))
	acc.Reset()

	assert.Equal(t, 0, acc.NumCorrect())
	assert.Equal(t, 0, acc.NumExamples())
	_, err = acc.Compute()
	assert.True(t, errors.Is(err, ErrComputeBeforeUpdate))
}

func TestAccuracyShapeMismatch(t *testing.T) {
	testCases := []struct {
		name        string
		predShape   []int
		labelShape  []int
		description string
	}{
		{
			name:        "class_axis_with_wrong_spatial",
			predShape:   []int{4, 3, 6},
			labelShape:  []int{4, 5},
			description: "spatial extent differs once the class axis is removed",
		},
		{
			name:        "rank_gap_of_two",
			predShape:   []int{4, 3, 2},
			labelShape:  []int{4},
			description: "predictions may carry at most one extra axis",
		},
		{
			name:        "labels_higher_rank",
			predShape:   []int{4},
			labelShape:  []int{4, 2},
			description: "labels may not carry more axes than predictions",
		},
		{
			name:        "batch_differs",
			predShape:   []int{3, 2},
			labelShape:  []int{4},
			description: "batch sizes must agree",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc := NewAccuracy()
			require.NoError(t, acc.Update(dense([]int{1, 2}, []float64{0.3, 0.7}), dense([]int{1}, []int64{1})))

			preds := dense(tc.predShape, make([]float64, totalSize(tc.predShape)))
			labels := dense(tc.labelShape, make([]int64, totalSize(tc.labelShape)))

			err := acc.Update(preds, labels)
			require.Error(t, err, tc.description)
			assert.True(t, errors.Is(err, ErrShapeMismatch), tc.description)

			// The failed call must not disturb earlier counts.
			assert.Equal(t, 1, acc.NumCorrect())
			assert.Equal(t, 1, acc.NumExamples())
		})
	}
}

func TestAccuracyRejectsNilAndScalars(t *testing.T) {
	acc := NewAccuracy()

	assert.True(t, errors.Is(acc.Update(nil, dense([]int{1}, []int64{0})), ErrShapeMismatch))

	scalar := tensor.New(tensor.FromScalar(1.0))
	assert.True(t, errors.Is(acc.Update(scalar, scalar), ErrShapeMismatch))
}

// TestAccuracySpatialExamples validates per-position accuracy for segmentation-style inputs.
func TestAccuracySpatialExamples(t *testing.T) {
	acc := NewAccuracy()

	// (batch=2, classes=2, h=2, w=1) against labels (2, 2, 1).
	preds := dense([]int{2, 2, 2, 1}, []float64{
		// batch 0: class 0 scores, then class 1 scores.
		0.9, 0.1,
		0.1, 0.9,
		// batch 1
		0.2, 0.6,
		0.8, 0.4,
	})
	labels := dense([]int{2, 2, 1}, []int64{0, 1, 1, 0})

	require.NoError(t, acc.Update(preds, labels))
	assert.Equal(t, 4, acc.NumExamples(), "examples equal the flattened label count")
	assert.Equal(t, 4, acc.NumCorrect())
}

func TestAccuracySqueezesSingletonAxes(t *testing.T) {
	acc := NewAccuracy()

	// Labels (3, 1) squeeze to (3) against class scores (3, 2).
	preds := dense([]int{3, 2}, []float64{0.9, 0.1, 0.2, 0.8, 0.6, 0.4})
	labels := dense([]int{3, 1}, []int64{0, 1, 1})
	require.NoError(t, acc.Update(preds, labels))
	assert.Equal(t, 2, acc.NumCorrect())

	// Predictions (3, 1) squeeze to binary probabilities.
	binary := dense([]int{3, 1}, []float64{0.9, 0.1, 0.6})
	require.NoError(t, acc.Update(binary, dense([]int{3}, []int64{1, 0, 0})))
	assert.Equal(t, 4, acc.NumCorrect())
	assert.Equal(t, 6, acc.NumExamples())
}

func TestAccuracyLabelDtypes(t *testing.T) {
	acc := NewAccuracy()

	preds := dense([]int{2, 2}, []float32{0.1, 0.9, 0.8, 0.2})

	// Float labels truncate toward zero.
	require.NoError(t, acc.Update(preds, dense([]int{2}, []float64{1.9, 0.2})))
	// Bool labels read as 0 and 1.
	require.NoError(t, acc.Update(preds, dense([]int{2}, []bool{true, false})))
	require.NoError(t, acc.Update(preds, dense([]int{2}, []uint8{1, 0})))

	got, err := acc.Compute()
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
	assert.Equal(t, 6, acc.NumExamples())
}

func TestAccuracyAccumulatesAcrossBatches(t *testing.T) {
	acc := NewAccuracy()

	require.NoError(t, acc.Update(dense([]int{2, 2}, []float64{0.1, 0.9, 0.8, 0.2}), dense([]int{2}, []int64{1, 0})))
	require.NoError(t, acc.Update(dense([]int{2, 2}, []float64{0.1, 0.9, 0.8, 0.2}), dense([]int{2}, []int64{0, 0})))

	assert.Equal(t, 3, acc.NumCorrect())
	assert.Equal(t, 4, acc.NumExamples())

	got, err := acc.Compute()
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-12)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}
