package grading_test

import (
	"context"
	"testing"

	"github.com/kambaz-edu/kambaz-server/internal/grading"
)

func grade(t *testing.T, q grading.Q, response interface{}) grading.Result {
	t.Helper()
	res, err := grading.NewDefaultGrader().Grade(context.Background(), q, response)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	return res
}

func TestChoiceExactMatch(t *testing.T) {
	q := grading.Q{Type: "mcq", Points: 1, CorrectChoice: "c1"}

	if res := grade(t, q, "c1"); res.Points != 1 {
		t.Errorf("correct choice: got %v, want 1", res.Points)
	}
	if res := grade(t, q, "c2"); res.Points != 0 {
		t.Errorf("wrong choice: got %v, want 0", res.Points)
	}
	if res := grade(t, q, "c3"); res.Points != 0 {
		t.Errorf("nonexistent choice: got %v, want 0", res.Points)
	}
}

func TestTrueFalseUsesChoiceIDs(t *testing.T) {
	q := grading.Q{Type: "tf", Points: 2, CorrectChoice: "true-choice"}
	if res := grade(t, q, "true-choice"); res.Points != 2 {
		t.Errorf("got %v, want 2", res.Points)
	}
	if res := grade(t, q, "false-choice"); res.Points != 0 {
		t.Errorf("got %v, want 0", res.Points)
	}
}

func TestChoiceNoCorrectChoiceNeverScores(t *testing.T) {
	q := grading.Q{Type: "mcq", Points: 1}
	if res := grade(t, q, ""); res.Points != 0 {
		t.Errorf("got %v, want 0", res.Points)
	}
}

func TestChoiceMalformedResponse(t *testing.T) {
	q := grading.Q{Type: "mcq", Points: 1, CorrectChoice: "c1"}
	for _, resp := range []interface{}{nil, 42, []string{"c1"}, map[string]interface{}{"x": "c1"}} {
		if res := grade(t, q, resp); res.Points != 0 {
			t.Errorf("malformed %T: got %v, want 0", resp, res.Points)
		}
	}
}

func TestFillNormalization(t *testing.T) {
	q := grading.Q{
		Type:   "fill",
		Points: 1,
		Blanks: []grading.Blank{{ID: "b1", Accepted: []string{"blue"}}},
	}

	if res := grade(t, q, map[string]interface{}{"b1": "  Blue "}); res.Points != 1 {
		t.Errorf("case/whitespace-insensitive match: got %v, want 1", res.Points)
	}
	if res := grade(t, q, map[string]interface{}{"b1": "red"}); res.Points != 0 {
		t.Errorf("wrong answer: got %v, want 0", res.Points)
	}
}

func TestFillAllOrNothing(t *testing.T) {
	q := grading.Q{
		Type:   "fill",
		Points: 3,
		Blanks: []grading.Blank{
			{ID: "b1", Accepted: []string{"red", "crimson"}},
			{ID: "b2", Accepted: []string{"blue"}},
		},
	}

	if res := grade(t, q, map[string]interface{}{"b1": "crimson", "b2": "blue"}); res.Points != 3 {
		t.Errorf("all blanks correct: got %v, want 3", res.Points)
	}
	if res := grade(t, q, map[string]interface{}{"b1": "red", "b2": "green"}); res.Points != 0 {
		t.Errorf("one wrong blank: got %v, want 0", res.Points)
	}
	if res := grade(t, q, map[string]interface{}{"b1": "red"}); res.Points != 0 {
		t.Errorf("missing blank: got %v, want 0", res.Points)
	}
}

func TestFillZeroBlanksNeverScores(t *testing.T) {
	q := grading.Q{Type: "fill", Points: 5}
	if res := grade(t, q, map[string]interface{}{}); res.Points != 0 {
		t.Errorf("got %v, want 0", res.Points)
	}
}

func TestFillMalformedResponseScoresZero(t *testing.T) {
	q := grading.Q{
		Type:   "fill",
		Points: 1,
		Blanks: []grading.Blank{{ID: "b1", Accepted: []string{"blue"}}},
	}
	for _, resp := range []interface{}{nil, "blue", 7, []interface{}{"blue"}} {
		if res := grade(t, q, resp); res.Points != 0 {
			t.Errorf("malformed %T: got %v, want 0", resp, res.Points)
		}
	}
}

func TestUnknownTypeScoresZero(t *testing.T) {
	q := grading.Q{Type: "essay", Points: 10}
	res := grade(t, q, "anything")
	if res.Points != 0 {
		t.Errorf("got %v, want 0", res.Points)
	}
	if res.Max != 10 {
		t.Errorf("max: got %v, want 10", res.Max)
	}
}
