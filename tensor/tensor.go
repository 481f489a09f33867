// Package tensor decodes per-position class predictions from model output tensors.
//
// Model outputs arrive in one of two layouts:
//
//   - rank 2, [batch, sequence]: the value at a position is the class index.
//   - rank 3, [batch, sequence, classes]: the slice at a position is one-hot.
//
// New picks the layout from the shape once, and Decode reads a single
// position. Any other shape decodes to class 0 everywhere.
package tensor

// Number is the set of element types ONNX Runtime hands back for class outputs.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Prediction is a decoded model output with a known layout.
// It is implemented only by Indices, OneHot and Unsupported.
type Prediction interface {
	layout() string
}

// Indices is a rank 2 output holding one class index per position.
type Indices struct {
	values []float64
}

// OneHot is a rank 3 output holding a one-hot class vector per position.
type OneHot struct {
	classes int
	values  []float64
}

// Unsupported is any output whose rank is neither 2 nor 3.
type Unsupported struct {
	Rank int
}

func (Indices) layout() string     { return "indices" }
func (OneHot) layout() string      { return "one-hot" }
func (Unsupported) layout() string { return "unsupported" }

// New wraps a flat buffer according to its shape.
func New[T Number](shape []int64, data []T) Prediction {
	switch len(shape) {
	case 2:
		return Indices{values: toFloat64(data)}
	case 3:
		return OneHot{classes: int(shape[2]), values: toFloat64(data)}
	default:
		return Unsupported{Rank: len(shape)}
	}
}

// Len returns the number of positions held by the output.
func (t Indices) Len() int { return len(t.values) }

// Classes returns the size of the class dimension.
func (t OneHot) Classes() int { return t.classes }

// Len returns the number of complete positions held by the output.
func (t OneHot) Len() int {
	if t.classes <= 0 {
		return 0
	}
	return len(t.values) / t.classes
}

// Decode returns the predicted class index at position.
// Out of range positions, missing one-hot entries and unsupported layouts
// all decode to 0.
func Decode(p Prediction, position int) int {
	if position < 0 {
		return 0
	}

	switch t := p.(type) {
	case Indices:
		if position >= len(t.values) {
			return 0
		}
		return int(t.values[position])

	case OneHot:
		if t.classes <= 0 {
			return 0
		}
		start := position * t.classes
		if start+t.classes > len(t.values) {
			return 0
		}
		for i, v := range t.values[start : start+t.classes] {
			if v == 1 {
				return i
			}
		}
		return 0

	default:
		return 0
	}
}

// Shift returns a view of p with the first n positions dropped, so that
// position i of the result is position i+n of p. Model outputs carry a
// prediction for the leading [CLS] sentinel; Shift(p, 1) lines them up with
// the content tokens. A shift past the end leaves an empty output.
func Shift(p Prediction, n int) Prediction {
	if n <= 0 {
		return p
	}

	switch t := p.(type) {
	case Indices:
		n = min(n, len(t.values))
		return Indices{values: t.values[n:]}

	case OneHot:
		if t.classes <= 0 {
			return t
		}
		start := min(n*t.classes, len(t.values))
		return OneHot{classes: t.classes, values: t.values[start:]}

	default:
		return p
	}
}

func toFloat64[T Number](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
