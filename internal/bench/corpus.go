// Package bench evaluates punctuation restoration against a punctuated
// gold corpus.
package bench

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jparkerweb/go-punct/splitter"
)

// Header contains metadata parsed from a corpus file header.
type Header struct {
	Source string
	Author string
	Title  string
}

// ParseHeader extracts metadata from "# Key: value" header comments.
// Returns the header, remaining text after header, and any error.
func ParseHeader(text string) (Header, string, error) {
	var h Header
	scanner := bufio.NewScanner(strings.NewReader(text))
	var bodyStart int
	var lineEnd int

	for scanner.Scan() {
		line := scanner.Text()
		lineEnd += len(line) + 1 // +1 for newline

		if !strings.HasPrefix(line, "#") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			bodyStart = lineEnd - len(line) - 1
			break
		}

		line = strings.TrimPrefix(line, "# ")
		if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Author:"); ok {
			h.Author = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Title:"); ok {
			h.Title = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return Header{}, "", fmt.Errorf("scan header: %w", err)
	}

	if h.Source == "" {
		return Header{}, "", errors.New("missing Source in header")
	}

	body := text[bodyStart:]
	body = strings.TrimSpace(body)

	return h, body, nil
}

// Document is a gold corpus file.
type Document struct {
	ID        string // filename without extension
	Source    string
	Author    string
	Title     string
	Text      string // punctuated, true-cased body
	Sentences []splitter.Sentence
	Gold      Labels
}

// Input returns the body as the model sees it: lowercase words without
// punctuation.
func (d *Document) Input() string {
	return strings.Join(d.Gold.Words, " ")
}

// Chunks returns the model input in pieces of at most window words.
// Paragraphs are packed whole while they fit; a paragraph longer than the
// window is cut at word boundaries. Joining the chunks with spaces yields
// Input().
func (d *Document) Chunks(window int) []string {
	if window <= 0 {
		window = DefaultWindow
	}

	var chunks []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = nil
		}
	}

	for _, para := range paragraphs(d.Text) {
		words := Label(para).Words
		if len(cur)+len(words) > window {
			flush()
		}
		for len(words) > window {
			chunks = append(chunks, strings.Join(words[:window], " "))
			words = words[window:]
		}
		cur = append(cur, words...)
	}
	flush()

	return chunks
}

// paragraphs splits text at blank lines.
func paragraphs(text string) []string {
	var out []string
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if b.Len() > 0 {
				out = append(out, b.String())
				b.Reset()
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

// LoadDocument loads and parses a gold file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	header, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	return &Document{
		ID:        id,
		Source:    header.Source,
		Author:    header.Author,
		Title:     header.Title,
		Text:      body,
		Sentences: splitter.SplitWithOffsets(body),
		Gold:      Label(body),
	}, nil
}

// LoadCorpus loads all .txt gold files from a directory.
func LoadCorpus(dir string) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".txt" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		doc, err := LoadDocument(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}
