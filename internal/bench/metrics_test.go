package bench

import (
	"reflect"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		predicted []int
		truth     []int
		tolerance int
		wantTP    int
		wantFP    int
		wantFN    int
	}{
		{
			name:      "perfect match",
			predicted: []int{10, 20, 30},
			truth:     []int{10, 20, 30},
			tolerance: 0,
			wantTP:    3,
			wantFP:    0,
			wantFN:    0,
		},
		{
			name:      "within tolerance",
			predicted: []int{11, 19, 31},
			truth:     []int{10, 20, 30},
			tolerance: 2,
			wantTP:    3,
			wantFP:    0,
			wantFN:    0,
		},
		{
			name:      "false positive",
			predicted: []int{10, 15, 20},
			truth:     []int{10, 20},
			tolerance: 0,
			wantTP:    2,
			wantFP:    1,
			wantFN:    0,
		},
		{
			name:      "false negative",
			predicted: []int{10},
			truth:     []int{10, 20},
			tolerance: 0,
			wantTP:    1,
			wantFP:    0,
			wantFN:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Tolerance: tt.tolerance}
			got := Evaluate(tt.predicted, tt.truth, cfg)

			if got.TruePositives != tt.wantTP {
				t.Errorf("TruePositives = %d, want %d", got.TruePositives, tt.wantTP)
			}
			if got.FalsePositives != tt.wantFP {
				t.Errorf("FalsePositives = %d, want %d", got.FalsePositives, tt.wantFP)
			}
			if got.FalseNegatives != tt.wantFN {
				t.Errorf("FalseNegatives = %d, want %d", got.FalseNegatives, tt.wantFN)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantWords      []string
		wantBoundaries []int
		wantCommas     []int
		wantCaps       []bool
	}{
		{
			name:           "sentences and comma",
			text:           "Hello, world. How are you?",
			wantWords:      []string{"hello", "world", "how", "are", "you"},
			wantBoundaries: []int{1, 4},
			wantCommas:     []int{0},
			wantCaps:       []bool{true, false, true, false, false},
		},
		{
			name:           "abbreviation",
			text:           "Mr. Smith arrived.",
			wantWords:      []string{"mr", "smith", "arrived"},
			wantBoundaries: []int{2},
			wantCaps:       []bool{true, true, false},
		},
		{
			name:           "number with thousands separator",
			text:           "It costs 3,000 dollars.",
			wantWords:      []string{"it", "costs", "3000", "dollars"},
			wantBoundaries: []int{3},
			wantCaps:       []bool{true, false, false, false},
		},
		{
			name:           "detached punctuation",
			text:           "Wait , what ?",
			wantWords:      []string{"wait", "what"},
			wantBoundaries: []int{1},
			wantCommas:     []int{0},
			wantCaps:       []bool{true, false},
		},
		{
			name:           "quoted",
			text:           `He said "Stop."`,
			wantWords:      []string{"he", "said", `"stop"`},
			wantBoundaries: []int{2},
			wantCaps:       []bool{true, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Label(tt.text)
			if !reflect.DeepEqual(got.Words, tt.wantWords) {
				t.Errorf("Words = %q, want %q", got.Words, tt.wantWords)
			}
			if !reflect.DeepEqual(got.Boundaries, tt.wantBoundaries) {
				t.Errorf("Boundaries = %v, want %v", got.Boundaries, tt.wantBoundaries)
			}
			if !reflect.DeepEqual(got.Commas, tt.wantCommas) {
				t.Errorf("Commas = %v, want %v", got.Commas, tt.wantCommas)
			}
			if !reflect.DeepEqual(got.Capitalized, tt.wantCaps) {
				t.Errorf("Capitalized = %v, want %v", got.Capitalized, tt.wantCaps)
			}
		})
	}
}

func TestEvaluateText(t *testing.T) {
	cfg := DefaultConfig()

	r, err := EvaluateText("Hello, world. How are you?", "Hello world. How are you.", cfg)
	if err != nil {
		t.Fatalf("EvaluateText() error = %v", err)
	}

	if r.Boundaries.TruePositives != 2 || r.Boundaries.F1 != 1 {
		t.Errorf("Boundaries = %+v", r.Boundaries)
	}
	if r.Commas.FalseNegatives != 1 || r.Commas.Recall != 0 {
		t.Errorf("Commas = %+v", r.Commas)
	}
	if r.Words != 5 || r.CaseAccuracy != 1 {
		t.Errorf("Words = %d, CaseAccuracy = %v", r.Words, r.CaseAccuracy)
	}
}

func TestEvaluateText_Mismatch(t *testing.T) {
	tests := []struct {
		gold, predicted string
		wantErr         string
	}{
		{"One two.", "One.", "word count mismatch"},
		{"One two.", "One three.", "word 1 differs"},
	}

	for _, tt := range tests {
		_, err := EvaluateText(tt.gold, tt.predicted, DefaultConfig())
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("EvaluateText(%q, %q) error = %v, want %q", tt.gold, tt.predicted, err, tt.wantErr)
		}
	}
}

func TestCombine(t *testing.T) {
	cfg := DefaultConfig()
	a := Report{Boundaries: Score(2, 0, 0, cfg), Commas: Score(1, 1, 0, cfg), Words: 4, CaseCorrect: 4}
	b := Report{Boundaries: Score(0, 2, 2, cfg), Commas: Score(0, 0, 1, cfg), Words: 6, CaseCorrect: 3}

	got := Combine([]Report{a, b}, cfg)

	if got.Boundaries.TruePositives != 2 || got.Boundaries.FalsePositives != 2 || got.Boundaries.FalseNegatives != 2 {
		t.Errorf("Boundaries counts = %+v", got.Boundaries)
	}
	if got.Boundaries.Precision != 0.5 || got.Boundaries.Recall != 0.5 {
		t.Errorf("Boundaries P/R = %v/%v", got.Boundaries.Precision, got.Boundaries.Recall)
	}
	if got.Commas.TruePositives != 1 || got.Commas.FalsePositives != 1 || got.Commas.FalseNegatives != 1 {
		t.Errorf("Commas counts = %+v", got.Commas)
	}
	if got.Words != 10 || got.CaseAccuracy != 0.7 {
		t.Errorf("Words = %d, CaseAccuracy = %v", got.Words, got.CaseAccuracy)
	}
}

func TestScore_Weighted(t *testing.T) {
	m := Score(3, 1, 3, Config{PrecisionWeight: 3, RecallWeight: 1})
	if m.Precision != 0.75 || m.Recall != 0.5 {
		t.Fatalf("P/R = %v/%v", m.Precision, m.Recall)
	}
	want := (3*0.75 + 0.5) / 4
	if m.WeightedScore != want {
		t.Errorf("WeightedScore = %v, want %v", m.WeightedScore, want)
	}
}
