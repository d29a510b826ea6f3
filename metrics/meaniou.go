package metrics

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// MeanIoU computes the intersection over union between thresholded predictions and binary
// labels.
//
// The counters hold the latest batch only: every Update overwrites the intersection and union
// counts instead of adding to them, so Compute reflects the most recent batch since Reset.
type MeanIoU struct {
	threshold    float64
	numIntersect int
	numUnion     int
}

// NewMeanIoU creates a mean IoU accumulator.
//
// Arguments:
//   - threshold: Probability at or above which a sigmoid-squashed prediction counts as positive.
//
// Returns:
//   - An empty accumulator.
func NewMeanIoU(threshold float64) *MeanIoU {
	return &MeanIoU{threshold: threshold}
}

// Threshold returns the positive-class probability threshold.
func (m *MeanIoU) Threshold() float64 {
	return m.threshold
}

// NumIntersect returns the intersection count of the latest batch.
func (m *MeanIoU) NumIntersect() int {
	return m.numIntersect
}

// NumUnion returns the union count of the latest batch.
func (m *MeanIoU) NumUnion() int {
	return m.numUnion
}

// Reset clears the intersection and union counts.
func (m *MeanIoU) Reset() {
	m.numIntersect = 0
	m.numUnion = 0
}

// Update thresholds raw prediction scores and compares them with labels.
//
// Predictions pass through a sigmoid and are positive when the probability is >= threshold.
// Labels are truncated to an unsigned byte. An element is in the intersection when the
// prediction is positive and the label byte is exactly 1, and in the union when the byte sum of
// the prediction bit and the label is non-zero.
//
// Arguments:
//   - predictions: Raw scores (logits) of any rank >= 1.
//   - labels: Labels with the same shape. A singleton axis 1 on either side is squeezed away.
//
// Returns:
//   - error wrapping ErrShapeMismatch if the shapes differ. The counts are left untouched on
//     error.
func (m *MeanIoU) Update(predictions, labels tensor.Tensor) error {
	if predictions == nil || labels == nil {
		return errors.Wrap(ErrShapeMismatch, "mean iou: predictions and labels are required")
	}

	predShape := predictions.Shape()
	labelShape := labels.Shape()
	if len(predShape) == 0 || len(labelShape) == 0 {
		return errors.Wrapf(ErrShapeMismatch, "mean iou: scalar tensors are not batches (predictions %v, labels %v)",
			predShape, labelShape)
	}
	if !sameShape(squeezeAxis1(predShape), squeezeAxis1(labelShape)) {
		return errors.Wrapf(ErrShapeMismatch, "mean iou: incompatible labels %v and predictions %v",
			labelShape, predShape)
	}

	positive, err := m.positiveMask(predictions)
	if err != nil {
		return errors.Wrap(err, "mean iou: predictions")
	}
	targets, err := values[int64](labels)
	if err != nil {
		return errors.Wrap(err, "mean iou: labels")
	}

	intersect, union := 0, 0
	for i, target := range targets {
		label := uint8(target)
		var pred uint8
		if positive[i] {
			pred = 1
		}
		if pred*label == 1 {
			intersect++
		}
		if pred+label > 0 {
			union++
		}
	}

	m.numIntersect = intersect
	m.numUnion = union

	return nil
}

// positiveMask applies the sigmoid and threshold to every prediction.
//
// float64 predictions are compared in float64. Every other dtype is compared in float32.
func (m *MeanIoU) positiveMask(predictions tensor.Tensor) ([]bool, error) {
	if predictions.Dtype() == tensor.Float64 {
		scores, err := values[float64](predictions)
		if err != nil {
			return nil, err
		}
		mask := make([]bool, len(scores))
		for i, x := range scores {
			mask[i] = 1/(1+math.Exp(-x)) >= m.threshold
		}
		return mask, nil
	}

	scores, err := values[float32](predictions)
	if err != nil {
		return nil, err
	}
	threshold := float32(m.threshold)
	mask := make([]bool, len(scores))
	for i, x := range scores {
		mask[i] = 1/(1+math32.Exp(-x)) >= threshold
	}
	return mask, nil
}

// Compute returns the intersection over union of the latest batch.
//
// Returns:
//   - The IoU in [0, 1].
//   - error wrapping ErrComputeBeforeUpdate if the union is empty.
func (m *MeanIoU) Compute() (float64, error) {
	if m.numUnion == 0 {
		return 0, errors.Wrap(ErrComputeBeforeUpdate, "mean iou must have at least one example before it can be computed")
	}
	return float64(m.numIntersect) / float64(m.numUnion), nil
}
