package bench

import "fmt"

// DefaultWindow is the number of words the model sees per call at its
// default max length of 512 tokens, less [CLS] and [SEP].
const DefaultWindow = 510

// Config holds evaluation parameters.
type Config struct {
	Tolerance       int // word match tolerance for boundaries
	PrecisionWeight float64
	RecallWeight    float64
	Window          int // words per Punctuate call; 0 means DefaultWindow
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		Tolerance:       0,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
		Window:          DefaultWindow,
	}
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
	WeightedScore  float64
}

// Evaluate compares predicted positions against ground truth.
// Uses greedy left-to-right matching within tolerance.
func Evaluate(predicted, truth []int, cfg Config) Metrics {
	matched := make([]bool, len(truth))
	tp := 0

	for _, p := range predicted {
		for i, t := range truth {
			if matched[i] {
				continue
			}
			diff := p - t
			if diff < 0 {
				diff = -diff
			}
			if diff <= cfg.Tolerance {
				matched[i] = true
				tp++
				break
			}
		}
	}

	return Score(tp, len(predicted)-tp, len(truth)-tp, cfg)
}

// Score computes precision, recall, F1 and the weighted score from counts.
func Score(tp, fp, fn int, cfg Config) Metrics {
	m := Metrics{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}

	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	wp := cfg.PrecisionWeight
	wr := cfg.RecallWeight
	if wp+wr > 0 {
		m.WeightedScore = (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}

	return m
}

// Report is the evaluation of one restored text, or of a corpus.
type Report struct {
	Boundaries   Metrics
	Commas       Metrics
	Words        int
	CaseCorrect  int
	CaseAccuracy float64
}

// EvaluateText scores predicted against gold. Both must contain the same
// words once punctuation and casing are removed.
func EvaluateText(gold, predicted string, cfg Config) (Report, error) {
	g, p := Label(gold), Label(predicted)
	if len(g.Words) != len(p.Words) {
		return Report{}, fmt.Errorf("word count mismatch: gold %d, predicted %d", len(g.Words), len(p.Words))
	}
	for i := range g.Words {
		if g.Words[i] != p.Words[i] {
			return Report{}, fmt.Errorf("word %d differs: gold %q, predicted %q", i, g.Words[i], p.Words[i])
		}
	}

	r := Report{
		Boundaries: Evaluate(p.Boundaries, g.Boundaries, cfg),
		// Commas are exact; a comma one word off is a different sentence.
		Commas: Evaluate(p.Commas, g.Commas, Config{PrecisionWeight: cfg.PrecisionWeight, RecallWeight: cfg.RecallWeight}),
		Words:  len(g.Words),
	}
	for i := range g.Capitalized {
		if g.Capitalized[i] == p.Capitalized[i] {
			r.CaseCorrect++
		}
	}
	if r.Words > 0 {
		r.CaseAccuracy = float64(r.CaseCorrect) / float64(r.Words)
	}
	return r, nil
}

// Combine sums the counts of reports and rescores them.
func Combine(reports []Report, cfg Config) Report {
	var b, c Metrics
	var total Report
	for _, r := range reports {
		b.TruePositives += r.Boundaries.TruePositives
		b.FalsePositives += r.Boundaries.FalsePositives
		b.FalseNegatives += r.Boundaries.FalseNegatives
		c.TruePositives += r.Commas.TruePositives
		c.FalsePositives += r.Commas.FalsePositives
		c.FalseNegatives += r.Commas.FalseNegatives
		total.Words += r.Words
		total.CaseCorrect += r.CaseCorrect
	}

	total.Boundaries = Score(b.TruePositives, b.FalsePositives, b.FalseNegatives, cfg)
	total.Commas = Score(c.TruePositives, c.FalsePositives, c.FalseNegatives, cfg)
	if total.Words > 0 {
		total.CaseAccuracy = float64(total.CaseCorrect) / float64(total.Words)
	}
	return total
}
