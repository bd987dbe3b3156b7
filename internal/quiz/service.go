package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kambaz-edu/kambaz-server/internal/grading"
	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

var (
	// ErrNotPublished gates unpublished quizzes against non-faculty callers.
	ErrNotPublished = errors.New("quiz not published")
	// ErrAttemptLimit covers both single-attempt quizzes on a second try and
	// multi-attempt quizzes past their cap.
	ErrAttemptLimit = errors.New("attempt limit exceeded")
)

type Service struct {
	store  Store
	grader grading.Grader
	now    func() time.Time
}

type Option func(*Service)

func WithGrader(g grading.Grader) Option {
	return func(s *Service) { s.grader = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		grader: grading.NewDefaultGrader(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create assigns the quiz id and stable ids for every question, choice and
// blank, then persists. Ids provided by the caller are kept so that prior
// attempts stay interpretable across edits.
func (s *Service) Create(ctx context.Context, q Quiz, createdBy string) (Quiz, error) {
	q.ID = uuid.NewString()
	if q.Title == "" {
		q.Title = "New Quiz"
	}
	if q.Settings == (Settings{}) {
		q.Settings = DefaultSettings()
	}
	ensureQuestionIDs(q.Questions)
	q.CreatedBy = createdBy
	q.CreatedAt = s.now()
	return s.store.PutQuiz(ctx, q)
}

// Update replaces the quiz content while preserving its identity, creation
// and publish audit fields. New questions/choices/blanks get ids; existing
// ids are never regenerated.
func (s *Service) Update(ctx context.Context, id string, updates Quiz) (Quiz, error) {
	existing, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	updates.ID = existing.ID
	updates.CreatedBy = existing.CreatedBy
	updates.CreatedAt = existing.CreatedAt
	updates.Published = existing.Published
	updates.PublishedBy = existing.PublishedBy
	updates.PublishedAt = existing.PublishedAt
	updates.UnpublishedBy = existing.UnpublishedBy
	updates.UnpublishedAt = existing.UnpublishedAt
	if updates.Course == "" {
		updates.Course = existing.Course
	}
	ensureQuestionIDs(updates.Questions)
	return s.store.PutQuiz(ctx, updates)
}

func (s *Service) Get(ctx context.Context, id string) (Quiz, error) {
	return s.store.GetQuiz(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteQuiz(ctx, id)
}

func (s *Service) Publish(ctx context.Context, id, by string) (Quiz, error) {
	return s.store.SetPublished(ctx, id, true, by)
}

func (s *Service) Unpublish(ctx context.Context, id, by string) (Quiz, error) {
	return s.store.SetPublished(ctx, id, false, by)
}

// ListForCourse returns every quiz for faculty viewers. Students only see
// published quizzes whose availability window contains now.
func (s *Service) ListForCourse(ctx context.Context, courseID string, viewer Identity) ([]Quiz, error) {
	quizzes, err := s.store.ListQuizzesForCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if viewer.Role == rbac.RoleFaculty || viewer.Role == rbac.RoleAdmin {
		return quizzes, nil
	}
	now := s.now()
	out := []Quiz{}
	for _, q := range quizzes {
		if q.Published && q.AvailableAt(now) {
			out = append(out, q)
		}
	}
	return out, nil
}

// Submit runs the eligibility check, scores the submission and persists
// exactly one attempt. On any eligibility failure nothing is written.
//
// attemptNumber comes from counting prior attempts at submission time; two
// concurrent submissions can race past the cap. That matches the accepted
// read-then-write semantics of the attempt limit.
func (s *Service) Submit(ctx context.Context, quizID string, user Identity, answers []Answer) (Attempt, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	if !q.Published && user.Role != rbac.RoleFaculty {
		return Attempt{}, ErrNotPublished
	}

	prior, err := s.store.ListAttemptsByUserAndQuiz(ctx, user.ID, quizID)
	if err != nil {
		return Attempt{}, err
	}
	attemptNumber := len(prior) + 1

	if !q.Settings.MultipleAttempts && attemptNumber > 1 {
		return Attempt{}, fmt.Errorf("%w: no multiple attempts allowed", ErrAttemptLimit)
	}
	if q.Settings.MultipleAttempts && q.Settings.MaxAttempts > 0 && attemptNumber > q.Settings.MaxAttempts {
		return Attempt{}, fmt.Errorf("%w: exceeded max attempts", ErrAttemptLimit)
	}

	score, total := s.score(ctx, q.Questions, answers)

	attempt := Attempt{
		Quiz:          quizID,
		User:          user.ID,
		Answers:       answers,
		Score:         score,
		TotalPoints:   total,
		AttemptNumber: attemptNumber,
	}
	return s.store.CreateAttempt(ctx, attempt)
}

// Attempts lists every attempt for a quiz, newest first. Missing quiz is an
// error so callers can 404 before leaking attempt data.
func (s *Service) Attempts(ctx context.Context, quizID string) ([]Attempt, error) {
	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.ListAttemptsByQuiz(ctx, quizID)
}

// AttemptsForUser lists one user's attempts for a quiz, newest first.
func (s *Service) AttemptsForUser(ctx context.Context, quizID, userID string) ([]Attempt, error) {
	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.ListAttemptsByUserAndQuiz(ctx, userID, quizID)
}

func (s *Service) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	return s.store.GetAttempt(ctx, id)
}

// score grades every question. Unanswered or malformed questions contribute
// zero; they never fail the submission.
func (s *Service) score(ctx context.Context, questions []Question, answers []Answer) (score, total float64) {
	for _, question := range questions {
		total += question.Points
		given, ok := findAnswer(answers, question.ID)
		if !ok {
			continue
		}
		res, err := s.grader.Grade(ctx, toGradingQ(question), given)
		if err != nil {
			continue
		}
		score += res.Points
	}
	return score, total
}

// findAnswer returns the first submitted answer for the question, matching
// the lookup order of the submission payload.
func findAnswer(answers []Answer, questionID string) (interface{}, bool) {
	for _, a := range answers {
		if a.QuestionID == questionID {
			return a.Answer, true
		}
	}
	return nil, false
}

func toGradingQ(q Question) grading.Q {
	gq := grading.Q{Type: q.Type, Points: q.Points}
	for _, c := range q.Choices {
		if c.IsCorrect {
			// nothing enforces a single correct choice; the first one wins
			gq.CorrectChoice = c.ID
			break
		}
	}
	for _, b := range q.Blanks {
		gq.Blanks = append(gq.Blanks, grading.Blank{ID: b.ID, Accepted: b.Answers})
	}
	return gq
}

func ensureQuestionIDs(questions []Question) {
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		for j := range questions[i].Choices {
			if questions[i].Choices[j].ID == "" {
				questions[i].Choices[j].ID = uuid.NewString()
			}
		}
		for j := range questions[i].Blanks {
			if questions[i].Blanks[j].ID == "" {
				questions[i].Blanks[j].ID = uuid.NewString()
			}
		}
	}
}
