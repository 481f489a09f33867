//go:build ignore

// Process raw Project Gutenberg downloads into gold corpus files.
// Only prose paragraphs that end in terminal punctuation are kept, so
// headings, tables of contents and verse do not count against the model.
// punct-bench feeds each document to the model in paragraph-aligned windows.
// Usage: go run ./scripts/process-gutenberg.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type book struct {
	Title  string
	Author string
}

var books = map[string]book{
	"pride_and_prejudice": {"Pride and Prejudice", "Jane Austen"},
	"moby_dick":           {"Moby Dick", "Herman Melville"},
	"great_expectations":  {"Great Expectations", "Charles Dickens"},
	"origin_of_species":   {"On the Origin of Species", "Charles Darwin"},
	"tom_sawyer":          {"The Adventures of Tom Sawyer", "Mark Twain"},
	"jane_eyre":           {"Jane Eyre", "Charlotte Bronte"},
}

// maxWords bounds a document so a bench run stays short.
const maxWords = 4000

var (
	startMarker = regexp.MustCompile(`(?m)^\*\*\* ?START OF (THE|THIS) PROJECT GUTENBERG EBOOK.*$`)
	endMarker   = regexp.MustCompile(`(?m)^\*\*\* ?END OF (THE|THIS) PROJECT GUTENBERG EBOOK`)
	// Bracketed editorial notes: [Illustration: ...], [Footnote 3: ...].
	editorial = regexp.MustCompile(`\[[^\]]*\]`)
	// _italic_ and =bold= markup.
	emphasis = regexp.MustCompile(`[_=]([^_=\n]+)[_=]`)
	terminal = regexp.MustCompile(`[.?!]["')\]]*$`)
)

func main() {
	inDir := "testdata/gutenberg"
	outDir := "testdata/gold"

	raws, err := filepath.Glob(filepath.Join(inDir, "*_raw.txt"))
	if err != nil || len(raws) == 0 {
		fmt.Fprintf(os.Stderr, "No raw files in %s (%v)\n", inDir, err)
		os.Exit(1)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}

	for _, raw := range raws {
		name := strings.TrimSuffix(filepath.Base(raw), "_raw.txt")
		meta, ok := books[name]
		if !ok {
			fmt.Printf("Skipping unknown book: %s\n", name)
			continue
		}

		data, err := os.ReadFile(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", raw, err)
			continue
		}

		paras := prose(body(string(data)), maxWords)
		out := filepath.Join(outDir, "gutenberg-"+name+".txt")
		if err := writeGold(out, meta, paras); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", out, err)
			continue
		}
		fmt.Printf("  -> %s (%d paragraphs)\n", out, len(paras))
	}
}

// body returns the text between the Gutenberg start and end markers.
func body(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if loc := startMarker.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	if loc := endMarker.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return text
}

// prose joins wrapped lines into paragraphs and keeps those that read as
// punctuated prose, up to limit words in total.
func prose(text string, limit int) []string {
	text = editorial.ReplaceAllString(text, "")
	text = emphasis.ReplaceAllString(text, "$1")

	var paras []string
	words := 0
	for _, block := range strings.Split(text, "\n\n") {
		para := strings.Join(strings.Fields(block), " ")
		if !isProse(para) {
			continue
		}
		n := len(strings.Fields(para))
		if words+n > limit {
			break
		}
		paras = append(paras, para)
		words += n
	}
	return paras
}

// isProse rejects headings, short fragments and shouted lines.
func isProse(para string) bool {
	if len(strings.Fields(para)) < 8 || !terminal.MatchString(para) {
		return false
	}
	return strings.ToUpper(para) != para
}

func writeGold(path string, meta book, paras []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# Source: https://www.gutenberg.org/")
	fmt.Fprintf(w, "# Author: %s\n", meta.Author)
	fmt.Fprintf(w, "# Title: %s\n\n", meta.Title)
	fmt.Fprintln(w, strings.Join(paras, "\n\n"))
	return w.Flush()
}
