package restore

import (
	"bytes"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/jparkerweb/go-punct/tensor"
)

// indices builds a rank 2 prediction from per-position classes.
func indices(values ...int64) tensor.Prediction {
	return tensor.New([]int64{1, int64(len(values))}, values)
}

// frame wraps content tokens with sentinels.
func frame(content ...string) []string {
	return append(append([]string{"[CLS]"}, content...), "[SEP]")
}

func TestEngine_Process(t *testing.T) {
	tests := []struct {
		name    string
		content []string
		punct   []int64
		capital []int64
		seg     []int64
		want    string
	}{
		{
			name:    "synthesized final period",
			content: []string{"hello", "world"},
			punct:   []int64{0, 0},
			capital: []int64{1, 0},
			seg:     []int64{0, 0},
			want:    "Hello world.",
		},
		{
			name:    "honorific cased by pattern",
			content: []string{"i", "saw", "mr", "smith"},
			punct:   []int64{0, 0, 0, 0},
			capital: []int64{0, 0, 0, 1},
			seg:     []int64{0, 0, 0, 0},
			want:    "I saw Mr Smith.",
		},
		{
			name:    "comma before trigger word",
			content: []string{"ok", "however", "we", "go"},
			punct:   []int64{2, 0, 0, 0},
			capital: []int64{0, 0, 0, 0},
			seg:     []int64{0, 0, 0, 0},
			want:    "Ok, however we go.",
		},
		{
			name:    "comma suppressed before plain word",
			content: []string{"big", "dog", "runs"},
			punct:   []int64{2, 0, 0},
			capital: []int64{0, 0, 0},
			seg:     []int64{0, 0, 0},
			want:    "Big dog runs.",
		},
		{
			name:    "comma after capitalized token following preposition",
			content: []string{"we", "live", "in", "London", "now"},
			punct:   []int64{0, 0, 0, 2, 0},
			capital: []int64{0, 0, 0, 0, 0},
			seg:     []int64{0, 0, 0, 0, 0},
			want:    "We live in london, now.",
		},
		{
			name:    "period starts new sentence",
			content: []string{"it", "snowed", "we", "stayed", "in"},
			punct:   []int64{0, 1, 0, 0, 0},
			capital: []int64{0, 0, 0, 0, 0},
			seg:     []int64{0, 0, 0, 0, 0},
			want:    "It snowed. We stayed in.",
		},
		{
			name:    "segmentation boundary before pronoun",
			content: []string{"he", "left", "she", "stayed"},
			punct:   []int64{0, 0, 0, 0},
			capital: []int64{0, 0, 0, 0},
			seg:     []int64{0, 1, 0, 0},
			want:    "He left. She stayed.",
		},
		{
			name:    "segmentation boundary ignored on non-terminal word",
			content: []string{"we", "met", "dr", "he"},
			punct:   []int64{0, 0, 0, 0},
			capital: []int64{0, 0, 0, 0},
			seg:     []int64{0, 0, 1, 0},
			want:    "We met Dr he.",
		},
		{
			name:    "segmentation without context is ignored",
			content: []string{"the", "dog", "barked"},
			punct:   []int64{0, 0, 0},
			capital: []int64{0, 0, 0},
			seg:     []int64{0, 1, 0},
			want:    "The dog barked.",
		},
		{
			name:    "question mark kept and not doubled",
			content: []string{"are", "you", "ok"},
			punct:   []int64{0, 0, 3},
			capital: []int64{0, 0, 0},
			seg:     []int64{0, 0, 0},
			want:    "Are you ok?",
		},
		{
			name:    "question mid text",
			content: []string{"why", "not", "i", "agree"},
			punct:   []int64{0, 3, 0, 0},
			capital: []int64{0, 0, 0, 0},
			seg:     []int64{0, 0, 0, 0},
			want:    "Why not? I agree.",
		},
		{
			name:    "exclamation is inactive",
			content: []string{"wow", "nice"},
			punct:   []int64{4, 0},
			capital: []int64{0, 0},
			seg:     []int64{0, 0},
			want:    "Wow nice.",
		},
		{
			name:    "weekday capitalized mid sentence",
			content: []string{"see", "you", "on", "monday"},
			punct:   []int64{0, 0, 0, 0},
			capital: []int64{0, 0, 0, 0},
			seg:     []int64{0, 0, 0, 0},
			want:    "See you on Monday.",
		},
		{
			name:    "uppercase input lowercased",
			content: []string{"HELLO", "WORLD"},
			punct:   []int64{0, 0},
			capital: []int64{0, 0},
			seg:     []int64{0, 0},
			want:    "Hello world.",
		},
		{
			name:    "whitespace token skipped",
			content: []string{"hello", "  ", "world"},
			punct:   []int64{0, 1, 0},
			capital: []int64{0, 0, 0},
			seg:     []int64{0, 0, 0},
			want:    "Hello world.",
		},
		{
			name:    "predictions shorter than content",
			content: []string{"one", "two", "three"},
			punct:   []int64{1},
			capital: []int64{},
			seg:     []int64{},
			want:    "One. Two three.",
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Process(frame(tt.content...), Predictions{
				Punctuation:    indices(tt.punct...),
				Capitalization: indices(tt.capital...),
				Segmentation:   indices(tt.seg...),
			})
			if got != tt.want {
				t.Errorf("Process() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Process_ShortInput(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"nil", nil, ""},
		{"single", []string{"[CLS]"}, "[CLS]"},
		{"sentinels only", []string{"[CLS]", "[SEP]"}, "[CLS] [SEP]"},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Process(tt.tokens, Predictions{}); got != tt.want {
				t.Errorf("Process() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Process_EmptyContent(t *testing.T) {
	e := New()
	if got := e.Process(frame(""), Predictions{}); got != "" {
		t.Errorf("Process() = %q, want empty", got)
	}
}

func TestEngine_Process_OneHotPredictions(t *testing.T) {
	// [batch, seq, classes] with 4 punctuation classes and 2 binary classes.
	punct := tensor.New([]int64{1, 3, 4}, []float32{
		0, 0, 1, 0,
		1, 0, 0, 0,
		0, 1, 0, 0,
	})
	capital := tensor.New([]int64{1, 3, 2}, []float32{0, 1, 1, 0, 1, 0})
	seg := tensor.New([]int64{1, 3, 2}, []float32{1, 0, 1, 0, 1, 0})

	e := New()
	got := e.Process(frame("well", "so", "be", "it"), Predictions{
		Punctuation:    punct,
		Capitalization: capital,
		Segmentation:   seg,
	})
	want := "Well, so be. It."
	if got != want {
		t.Errorf("Process() = %q, want %q", got, want)
	}
}

func TestEngine_Process_NoPredictions(t *testing.T) {
	e := New()
	got := e.Process(frame("just", "words"), Predictions{})
	if got != "Just words." {
		t.Errorf("Process() = %q, want %q", got, "Just words.")
	}
}

func TestEngine_Process_WellFormed(t *testing.T) {
	words := []string{
		"the", "dog", "i", "he", "said", "and", "however", "in", "Paris",
		"2020", "3", "years", "monday", "mr", "smith", "ran", "fast",
	}
	rng := rand.New(rand.NewSource(42))
	e := New()

	for run := 0; run < 500; run++ {
		n := 1 + rng.Intn(12)
		content := make([]string, n)
		punct := make([]int64, n)
		capital := make([]int64, n)
		seg := make([]int64, n)
		for i := range content {
			content[i] = words[rng.Intn(len(words))]
			punct[i] = int64(rng.Intn(5))
			capital[i] = int64(rng.Intn(2))
			seg[i] = int64(rng.Intn(2))
		}

		got := e.Process(frame(content...), Predictions{
			Punctuation:    indices(punct...),
			Capitalization: indices(capital...),
			Segmentation:   indices(seg...),
		})

		if !strings.HasSuffix(got, ".") && !strings.HasSuffix(got, "?") {
			t.Fatalf("output %q does not end with a terminal mark", got)
		}
		if strings.Contains(got, "  ") {
			t.Fatalf("output %q has a double space", got)
		}
		for _, bad := range []string{" .", " ,", " ?", "..", "?."} {
			if strings.Contains(got, bad) {
				t.Fatalf("output %q contains %q", got, bad)
			}
		}
		if words := strings.Fields(got); len(words) != n {
			t.Fatalf("output %q has %d words, want %d", got, len(words), n)
		}
		for i := 0; i < len(got)-1; i++ {
			if (got[i] == '.' || got[i] == '?') && got[i+1] != ' ' {
				t.Fatalf("terminal mark inside a word in %q", got)
			}
		}
	}
}

func TestEngine_DebugTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := New(WithLogger(logger), WithDebugTokens(2))
	_ = e.Process(frame("one", "two", "three"), Predictions{})

	if got := strings.Count(buf.String(), "token decision"); got != 2 {
		t.Errorf("got %d trace lines, want 2:\n%s", got, buf.String())
	}
	if !strings.Contains(buf.String(), "token=one") {
		t.Errorf("trace missing first token:\n%s", buf.String())
	}
}

func TestEngine_WithLexicon(t *testing.T) {
	w := DefaultWords()
	w.CommaTriggers = append(w.CommaTriggers, "dog")

	e := New(WithLexicon(NewLexicon(w)))
	got := e.Process(frame("big", "dog", "runs"), Predictions{
		Punctuation: indices(2, 0, 0),
	})
	if got != "Big, dog runs." {
		t.Errorf("Process() = %q, want %q", got, "Big, dog runs.")
	}

	// The default lexicon is unaffected.
	if DefaultLexicon().commaTriggers.has("dog") {
		t.Error("custom word list leaked into the default lexicon")
	}
}
