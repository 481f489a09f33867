// Package inference provides ONNX Runtime integration for the punctuation,
// capitalization and segmentation model.
package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/jparkerweb/go-punct/tensor"
)

// Model input names.
const (
	InputIDs      = "input_ids"
	AttentionMask = "attention_mask"
)

// Model output names.
const (
	OutputPunctuation    = "post_preds"
	OutputCapitalization = "cap_preds"
	OutputSegmentation   = "seg_preds"
)

// ErrSessionClosed is returned by Infer after Close.
var ErrSessionClosed = errors.New("inference: session is closed")

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// SetLibraryPath points ONNX Runtime at a specific shared library. It must
// be called before the first session is created.
func SetLibraryPath(path string) {
	if path != "" {
		ort.SetSharedLibraryPath(path)
	}
}

// Session wraps an ONNX Runtime session. Calls to Infer are serialized.
type Session struct {
	session *ort.DynamicAdvancedSession
	outputs []string
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a model file.
func NewSession(modelPath string) (*Session, error) {
	// Check file exists
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }() // Cleanup error doesn't affect success

	inputNames := []string{InputIDs, AttentionMask}
	outputNames := []string{OutputPunctuation, OutputCapitalization, OutputSegmentation}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session, outputs: outputNames}, nil
}

// Infer runs the model on one padded sequence and returns the decoded
// outputs keyed by output name.
func (s *Session) Infer(ctx context.Context, inputIDs, attentionMask []int64) (map[string]tensor.Prediction, error) {
	// Check context before expensive operation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(inputIDs) != len(attentionMask) {
		return nil, fmt.Errorf("input_ids has %d entries, attention_mask has %d", len(inputIDs), len(attentionMask))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	shape := ort.NewShape(1, int64(len(inputIDs)))

	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("creating %s tensor: %w", InputIDs, err)
	}
	defer func() { _ = inputIDsTensor.Destroy() }()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("creating %s tensor: %w", AttentionMask, err)
	}
	defer func() { _ = attentionMaskTensor.Destroy() }()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor}

	// nil entries are allocated by Run
	outputs := make([]ort.Value, len(s.outputs))

	if err := s.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				_ = v.Destroy()
			}
		}
	}()

	preds := make(map[string]tensor.Prediction, len(outputs))
	for i, v := range outputs {
		if v == nil {
			return nil, fmt.Errorf("no output produced for %s", s.outputs[i])
		}
		p, err := toPrediction(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.outputs[i], err)
		}
		preds[s.outputs[i]] = p
	}

	return preds, nil
}

// toPrediction copies an output tensor into a tensor.Prediction.
func toPrediction(v ort.Value) (tensor.Prediction, error) {
	shape := []int64(v.GetShape())

	switch t := v.(type) {
	case *ort.Tensor[int64]:
		return tensor.New(shape, t.GetData()), nil
	case *ort.Tensor[int32]:
		return tensor.New(shape, t.GetData()), nil
	case *ort.Tensor[float32]:
		return tensor.New(shape, t.GetData()), nil
	case *ort.Tensor[float64]:
		return tensor.New(shape, t.GetData()), nil
	case *ort.Tensor[uint8]:
		return tensor.New(shape, t.GetData()), nil
	case *ort.Tensor[int8]:
		return tensor.New(shape, t.GetData()), nil
	default:
		return nil, fmt.Errorf("unexpected output tensor type %T", v)
	}
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
