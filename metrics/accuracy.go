package metrics

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Accuracy accumulates the fraction of examples whose predicted class matches the label.
//
// Predictions are shaped (batch, classes, ...) or (batch, ...). Labels are shaped (batch, ...).
// A prediction without a class axis is read as the probability of the positive class of a
// binary problem.
type Accuracy struct {
	numCorrect  int
	numExamples int
}

// NewAccuracy creates an empty accuracy accumulator.
func NewAccuracy() *Accuracy {
	return &Accuracy{}
}

// Reset clears the correct and example counts.
func (a *Accuracy) Reset() {
	a.numCorrect = 0
	a.numExamples = 0
}

// NumCorrect returns the number of matching examples seen since the last Reset.
func (a *Accuracy) NumCorrect() int {
	return a.numCorrect
}

// NumExamples returns the number of compared examples seen since the last Reset.
func (a *Accuracy) NumExamples() int {
	return a.numExamples
}

// Update compares one batch of predictions against labels and adds the result to the counts.
//
// Arguments:
//   - predictions: Scores shaped (batch, classes, ...), or (batch, ...) for binary problems.
//     A singleton axis 1 is squeezed away.
//   - labels: Class indices shaped (batch, ...). Values are truncated to integers and a
//     singleton axis 1 is squeezed away.
//
// Returns:
//   - error wrapping ErrShapeMismatch if the shapes cannot be reconciled. The counts are left
//     untouched on error.
//
// @example
//
//	acc := NewAccuracy()
//	preds := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float64{0.1, 0.9, 0.8, 0.2}))
//	labels := tensor.New(tensor.WithShape(2), tensor.WithBacking([]int64{1, 0}))
//
//	if err := acc.Update(preds, labels); err != nil {
//	    return err
//	}
func (a *Accuracy) Update(predictions, labels tensor.Tensor) error {
	if predictions == nil || labels == nil {
		return errors.Wrap(ErrShapeMismatch, "accuracy: predictions and labels are required")
	}

	predShape := predictions.Shape().Clone()
	labelShape := labels.Shape().Clone()

	if len(predShape) == 0 || len(labelShape) == 0 {
		return errors.Wrapf(ErrShapeMismatch, "accuracy: scalar tensors are not batches (predictions %v, labels %v)",
			predShape, labelShape)
	}

	if len(labelShape) != len(predShape) && len(labelShape)+1 != len(predShape) {
		return errors.Wrapf(ErrShapeMismatch,
			"accuracy: labels must be (batch_size, ...) and predictions (batch_size, num_classes, ...) "+
				"or (batch_size, ...), got labels %v and predictions %v", labelShape, predShape)
	}

	labelShape = squeezeAxis1(labelShape)
	predShape = squeezeAxis1(predShape)

	compared := predShape
	if len(labelShape)+1 == len(predShape) {
		compared = stripClassAxis(predShape)
	}
	if !sameShape(labelShape, compared) {
		return errors.Wrapf(ErrShapeMismatch, "accuracy: incompatible labels %v and predictions %v",
			labels.Shape(), predictions.Shape())
	}

	targets, err := values[int64](labels)
	if err != nil {
		return errors.Wrap(err, "accuracy: labels")
	}
	probs, err := values[float64](predictions)
	if err != nil {
		return errors.Wrap(err, "accuracy: predictions")
	}

	if len(targets) == 0 {
		return nil
	}

	var scores *tensor.Dense
	if len(predShape) == len(labelShape) {
		scores = liftBinary(predShape, probs)
	} else {
		scores = tensor.New(tensor.WithShape(predShape...), tensor.WithBacking(probs))
	}

	indices, err := argmaxClassAxis(scores)
	if err != nil {
		return errors.Wrap(err, "accuracy")
	}

	correct := 0
	for i, idx := range indices {
		if idx == targets[i] {
			correct++
		}
	}

	a.numCorrect += correct
	a.numExamples += len(indices)

	return nil
}

// Compute returns the fraction of correct examples since the last Reset.
//
// Returns:
//   - The accuracy in [0, 1].
//   - error wrapping ErrComputeBeforeUpdate if no examples have been seen.
func (a *Accuracy) Compute() (float64, error) {
	if a.numExamples == 0 {
		return 0, errors.Wrap(ErrComputeBeforeUpdate, "accuracy must have at least one example before it can be computed")
	}
	return float64(a.numCorrect) / float64(a.numExamples), nil
}
