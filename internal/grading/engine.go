package grading

import (
	"context"
)

// Q is a minimal view of a question needed for grading.
// Keep this in sync with whatever fields your store uses.
type Q struct {
	Type          string
	Points        float64
	CorrectChoice string  // mcq/tf: id of the choice flagged correct ("" if none)
	Blanks        []Blank // fill only
}

// Blank is one fill-in slot and its accepted answers.
type Blank struct {
	ID       string
	Accepted []string
}

// Result is the outcome of grading a single question response.
type Result struct {
	Points float64 // points awarded
	Max    float64 // the question's max points
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		// unknown question type scores zero rather than failing the submission
		return Result{Max: q.Points}, nil
	}
	return s.Grade(ctx, q, response)
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"mcq":  choiceStrategy{},
			"tf":   choiceStrategy{},
			"fill": fillStrategy{},
		},
	}
}

// --- Strategies ---

// choiceStrategy covers mcq and tf: both are answered with a choice id.
type choiceStrategy struct{}

func (choiceStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{Max: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, nil
	}
	if q.CorrectChoice != "" && resp == q.CorrectChoice {
		res.Points = q.Points
	}
	return res, nil
}

// fillStrategy awards full points only when every blank matches one of its
// accepted answers after normalization. A question with zero blanks never scores.
type fillStrategy struct{}

func (fillStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{Max: q.Points}
	if len(q.Blanks) == 0 {
		return res, nil
	}
	given, ok := toStringMap(response)
	if !ok {
		given = map[string]string{}
	}
	for _, b := range q.Blanks {
		if !blankCorrect(b, given[b.ID]) {
			return res, nil
		}
	}
	res.Points = q.Points
	return res, nil
}

func blankCorrect(b Blank, text string) bool {
	norm := normalize(text)
	for _, a := range b.Accepted {
		if normalize(a) == norm {
			return true
		}
	}
	return false
}

// toStringMap tolerates the shapes JSON decoding produces for blank answers.
func toStringMap(v interface{}) (map[string]string, bool) {
	switch t := v.(type) {
	case map[string]string:
		return t, true
	case map[string]interface{}:
		out := make(map[string]string, len(t))
		for k, e := range t {
			if s, ok := e.(string); ok {
				out[k] = s
			}
		}
		return out, true
	default:
		return nil, false
	}
}
