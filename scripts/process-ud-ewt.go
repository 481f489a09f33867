//go:build ignore

// Process UD English Web Treebank CoNLL-U files into gold corpus files.
// Each split becomes one punctuated document under testdata/gold.
// Usage: go run ./scripts/process-ud-ewt.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxSentences keeps a split small enough to benchmark quickly.
const maxSentences = 2000

func main() {
	inDir := "testdata/ud-ewt"
	outDir := "testdata/gold"

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}

	for _, split := range []string{"train", "dev", "test"} {
		inFile := filepath.Join(inDir, fmt.Sprintf("en_ewt-ud-%s.conllu", split))
		outFile := filepath.Join(outDir, fmt.Sprintf("ud-ewt-%s.txt", split))

		fmt.Printf("Processing %s...\n", split)
		sentences, err := readSentences(inFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inFile, err)
			continue
		}
		if len(sentences) > maxSentences {
			sentences = sentences[:maxSentences]
		}

		if err := writeGold(outFile, split, sentences); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outFile, err)
			continue
		}
		fmt.Printf("  -> %s (%d sentences)\n", outFile, len(sentences))
	}
}

// readSentences returns the "# text = " lines of a CoNLL-U file whose
// sentence ends in terminal punctuation. Web text without it would score
// as a missed boundary that no reader would insert either.
func readSentences(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var sentences []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		text, ok := strings.CutPrefix(scanner.Text(), "# text = ")
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "?") || strings.HasSuffix(text, "!") {
			sentences = append(sentences, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	return sentences, nil
}

func writeGold(path, split string, sentences []string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	fmt.Fprintln(w, "# Source: https://github.com/UniversalDependencies/UD_English-EWT")
	fmt.Fprintf(w, "# Title: English Web Treebank (%s)\n\n", split)
	for _, s := range sentences {
		fmt.Fprintln(w, s)
	}
	return w.Flush()
}
