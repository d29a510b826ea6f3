package metrics

import (
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// number is the set of element types a tensor can be flattened into.
type number interface {
	~float32 | ~float64 | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func convert[S, D number](src []S) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = D(v)
	}
	return out
}

// materialize returns a tensor whose Data is laid out contiguously in row-major order.
func materialize(t tensor.Tensor) tensor.Tensor {
	if v, ok := t.(tensor.View); ok && v.IsView() && v.IsMaterializable() {
		return v.Materialize()
	}
	return t
}

// values copies the elements of t into a flat row-major slice of D.
//
// Arguments:
//   - t: The tensor to flatten. Views are materialized first.
//
// Returns:
//   - The converted elements, one per element of t's shape.
//   - error if the dtype is unsupported or the backing does not match the shape.
func values[D number](t tensor.Tensor) ([]D, error) {
	var out []D

	switch data := materialize(t).Data().(type) {
	case []float64:
		out = convert[float64, D](data)
	case []float32:
		out = convert[float32, D](data)
	case []int:
		out = convert[int, D](data)
	case []int64:
		out = convert[int64, D](data)
	case []int32:
		out = convert[int32, D](data)
	case []int16:
		out = convert[int16, D](data)
	case []int8:
		out = convert[int8, D](data)
	case []uint:
		out = convert[uint, D](data)
	case []uint64:
		out = convert[uint64, D](data)
	case []uint32:
		out = convert[uint32, D](data)
	case []uint16:
		out = convert[uint16, D](data)
	case []uint8:
		out = convert[uint8, D](data)
	case []bool:
		out = make([]D, len(data))
		for i, b := range data {
			if b {
				out[i] = 1
			}
		}
	// Single-element tensors may hand back the element itself.
	case float64:
		out = []D{D(data)}
	case float32:
		out = []D{D(data)}
	case int:
		out = []D{D(data)}
	case int64:
		out = []D{D(data)}
	case int32:
		out = []D{D(data)}
	case uint8:
		out = []D{D(data)}
	case bool:
		out = make([]D, 1)
		if data {
			out[0] = 1
		}
	default:
		return nil, errors.Errorf("unsupported tensor dtype %v", t.Dtype())
	}

	if want := totalSize(t.Shape()); len(out) != want {
		return nil, errors.Wrapf(ErrShapeMismatch, "tensor of shape %v holds %d elements, expected %d",
			t.Shape(), len(out), want)
	}

	return out, nil
}

// totalSize returns the number of elements described by shape.
func totalSize(shape tensor.Shape) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// sameShape compares two shapes dimension by dimension.
//
// tensor.Shape.Eq treats row and column vectors as equal to flat vectors, which is too lenient
// for label/prediction reconciliation.
func sameShape(a, b tensor.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// squeezeAxis1 drops axis 1 from shape when the shape has more than one dimension and that axis
// has size 1. The input is never modified.
func squeezeAxis1(shape tensor.Shape) tensor.Shape {
	if len(shape) > 1 && shape[1] == 1 {
		out := make(tensor.Shape, 0, len(shape)-1)
		out = append(out, shape[0])
		return append(out, shape[2:]...)
	}
	return shape.Clone()
}

// stripClassAxis returns shape without its class axis (axis 1).
func stripClassAxis(shape tensor.Shape) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[0])
	return append(out, shape[2:]...)
}

// liftBinary maps per-element positive-class probabilities onto two-class scores.
//
// The result has a class axis inserted at index 1 holding [1-p, p] for every element p.
//
// Arguments:
//   - shape: The shape of p (batch first).
//   - p: Row-major probabilities of the positive class.
//
// Returns:
//   - A float64 tensor of shape (shape[0], 2, shape[1:]...).
func liftBinary(shape tensor.Shape, p []float64) *tensor.Dense {
	batch := shape[0]
	inner := totalSize(shape[1:])

	lifted := make([]float64, 2*len(p))
	for b := 0; b < batch; b++ {
		src := p[b*inner : (b+1)*inner]
		dst := lifted[b*2*inner : (b+1)*2*inner]
		for r, v := range src {
			dst[r] = 1.0 - v
			dst[inner+r] = v
		}
	}

	liftedShape := make(tensor.Shape, 0, len(shape)+1)
	liftedShape = append(liftedShape, batch, 2)
	liftedShape = append(liftedShape, shape[1:]...)

	return tensor.New(tensor.WithShape(liftedShape...), tensor.WithBacking(lifted))
}

// argmaxClassAxis returns, for every batch/position pair, the index of the highest score along
// axis 1.
//
// The first maximum wins on ties. A NaN score is treated as the maximum, so the first NaN along
// the axis is selected.
//
// Arguments:
//   - scores: A float64 tensor of shape (batch, classes, ...).
//
// Returns:
//   - Row-major class indices of shape (batch, ...).
//   - error if the tensor is not a float64 tensor with a class axis.
func argmaxClassAxis(scores *tensor.Dense) ([]int64, error) {
	shape := scores.Shape()
	if len(shape) < 2 {
		return nil, errors.Wrapf(ErrShapeMismatch, "scores of shape %v have no class axis", shape)
	}

	data, ok := scores.Data().([]float64)
	if !ok {
		return nil, errors.Errorf("scores must be float64, got %v", scores.Dtype())
	}

	batch, classes := shape[0], shape[1]
	inner := totalSize(shape[2:])
	if classes == 0 && batch*inner > 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "scores of shape %v have an empty class axis", shape)
	}

	out := make([]int64, batch*inner)
	for b := 0; b < batch; b++ {
		base := b * classes * inner
		for r := 0; r < inner; r++ {
			best := 0
			bestScore := data[base+r]
			for c := 1; c < classes && !math.IsNaN(bestScore); c++ {
				if v := data[base+c*inner+r]; v > bestScore || math.IsNaN(v) {
					best, bestScore = c, v
				}
			}
			out[b*inner+r] = int64(best)
		}
	}

	return out, nil
}
