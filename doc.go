// Package punct restores punctuation, capitalization and sentence
// boundaries in unpunctuated English text using the
// punct_cap_seg ONNX model.
//
// # Quick Start
//
//	r, err := punct.New("model.onnx", "tokenizer.model")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	sentences, err := r.Restore(ctx, []string{"hello world how are you"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sentences)
//
// Open downloads the model first when it is not already present:
//
//	f := download.NewFetcher(download.NewHTTPSource("", os.Getenv("HF_TOKEN")), "models")
//	r, err := punct.Open(ctx, f)
//
// # Thread Safety
//
// Restorer is safe for concurrent use. It manages an internal pool of ONNX
// sessions, configurable via WithPoolSize.
//
// # Model Files
//
// Download from HuggingFace:
//   - Model: https://huggingface.co/1-800-BAD-CODE/punctuation_fullstop_truecase_english/resolve/main/punct_cap_seg_en.onnx
//   - Tokenizer: https://huggingface.co/1-800-BAD-CODE/punctuation_fullstop_truecase_english/resolve/main/spe_32k_lc_en.model
package punct
