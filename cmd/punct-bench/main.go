package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jparkerweb/go-punct"
	"github.com/jparkerweb/go-punct/internal/bench"
)

func main() {
	var (
		modelPath     = flag.String("model", "", "Path to ONNX model file (required)")
		tokenizerPath = flag.String("tokenizer", "", "Path to tokenizer model file")
		corpusDir     = flag.String("corpus", "testdata/gold", "Directory containing gold files")
		tolerance     = flag.Int("tolerance", 0, "Word tolerance for boundary matching")
		maxLength     = flag.Int("max-length", 512, "Model input length in tokens")
		wp            = flag.Float64("wp", 1.0, "Precision weight")
		wr            = flag.Float64("wr", 1.0, "Recall weight")
		verbose       = flag.Bool("v", false, "Print per-document results")
		models        = flag.String("models", "", "Comma-separated model paths for comparison")
	)
	flag.Parse()

	if *modelPath == "" && *models == "" {
		fmt.Fprintln(os.Stderr, "error: -model or -models required")
		flag.Usage()
		os.Exit(1)
	}

	// Load corpus
	docs, err := bench.LoadCorpus(*corpusDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d documents from %s\n\n", len(docs), *corpusDir)

	cfg := bench.Config{
		Tolerance:       *tolerance,
		PrecisionWeight: *wp,
		RecallWeight:    *wr,
		Window:          *maxLength - 2, // [CLS] and [SEP]
	}

	ctx := context.Background()

	if *models != "" {
		runModelComparison(ctx, strings.Split(*models, ","), *tokenizerPath, docs, cfg)
		return
	}
	runSingle(ctx, *modelPath, *tokenizerPath, docs, cfg, *verbose)
}

func evaluate(ctx context.Context, modelPath, tokenizerPath string, docs []*bench.Document, cfg bench.Config) ([]bench.DocumentResult, bench.Report, error) {
	r, err := punct.New(modelPath, tokenizerPath,
		punct.WithDebugTokens(0),
		punct.WithMaxLength(cfg.Window+2),
	)
	if err != nil {
		return nil, bench.Report{}, err
	}
	defer func() { _ = r.Close() }()

	return bench.EvaluateCorpus(ctx, r, docs, cfg)
}

func runSingle(ctx context.Context, modelPath, tokenizerPath string, docs []*bench.Document, cfg bench.Config, verbose bool) {
	results, total, err := evaluate(ctx, modelPath, tokenizerPath, docs, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		fmt.Printf("%-24s %-8s %-8s %-8s\n", "Document", "BndF1", "CommaF1", "CaseAcc")
		fmt.Println(strings.Repeat("-", 50))
		for _, res := range results {
			fmt.Printf("%-24s %-8.2f %-8.2f %-8.2f\n",
				res.ID, res.Report.Boundaries.F1, res.Report.Commas.F1, res.Report.CaseAccuracy)
		}
		fmt.Println()
	}

	printReport(total)
}

func runModelComparison(ctx context.Context, modelPaths []string, tokenizerPath string, docs []*bench.Document, cfg bench.Config) {
	fmt.Printf("Model Comparison (wp=%.1f, wr=%.1f)\n", cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("%-30s %-8s %-8s %-8s\n", "Model", "BndF1", "Weighted", "CommaF1")

	var results []bench.ModelResult
	for _, modelPath := range modelPaths {
		_, total, err := evaluate(ctx, modelPath, tokenizerPath, docs, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error with %s: %v\n", modelPath, err)
			continue
		}
		results = append(results, bench.ModelResult{Model: modelPath, Report: total})
	}

	bench.Rank(results)
	for _, res := range results {
		fmt.Printf("%-30s %-8.2f %-8.2f %-8.2f\n",
			res.Model, res.Report.Boundaries.F1, res.Report.Boundaries.WeightedScore, res.Report.Commas.F1)
	}
}

func printReport(r bench.Report) {
	b, c := r.Boundaries, r.Commas
	fmt.Printf("Boundaries  Precision: %.2f  Recall: %.2f  F1: %.2f  Weighted: %.2f\n",
		b.Precision, b.Recall, b.F1, b.WeightedScore)
	fmt.Printf("            (TP: %d, FP: %d, FN: %d)\n", b.TruePositives, b.FalsePositives, b.FalseNegatives)
	fmt.Printf("Commas      Precision: %.2f  Recall: %.2f  F1: %.2f\n", c.Precision, c.Recall, c.F1)
	fmt.Printf("            (TP: %d, FP: %d, FN: %d)\n", c.TruePositives, c.FalsePositives, c.FalseNegatives)
	fmt.Printf("Casing      Accuracy: %.2f  (%d/%d words)\n", r.CaseAccuracy, r.CaseCorrect, r.Words)
}
