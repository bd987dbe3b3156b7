package quiz

import (
	"context"
	"errors"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")
)

// Store is the persistence boundary for quizzes and attempts. Two
// implementations exist: the SQL store used in production and an in-memory
// double for tests. Attempts are append-only; nothing ever mutates one.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) (Quiz, error)
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzesForCourse(ctx context.Context, courseID string) ([]Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool, by string) (Quiz, error)

	// CreateAttempt assigns the attempt's id and creation timestamp.
	CreateAttempt(ctx context.Context, a Attempt) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttemptsByQuiz(ctx context.Context, quizID string) ([]Attempt, error)
	// ListAttemptsByUserAndQuiz returns the user's attempts newest first.
	ListAttemptsByUserAndQuiz(ctx context.Context, userID, quizID string) ([]Attempt, error)
}
