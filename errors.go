package punct

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("punct: model file not found")

	// ErrInvalidModel indicates the model file exists but no session could be created from it.
	ErrInvalidModel = errors.New("punct: invalid model format")

	// ErrTokenizerFailed indicates tokenizer initialization failed.
	ErrTokenizerFailed = errors.New("punct: tokenizer initialization failed")

	// ErrDownloadFailed indicates the model files could not be fetched.
	ErrDownloadFailed = errors.New("punct: model download failed")

	// ErrInferenceFailed indicates the model failed on an input text.
	ErrInferenceFailed = errors.New("punct: inference failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("punct: restorer is closed")
)
