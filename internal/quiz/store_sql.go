package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	sj, err := json.Marshal(q.Settings)
	if err != nil {
		return Quiz{}, err
	}
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return Quiz{}, err
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,course_id,title,description,published,available_date,until_date,due_date,settings_json,questions_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
		  course_id=EXCLUDED.course_id, title=EXCLUDED.title, description=EXCLUDED.description,
		  published=EXCLUDED.published, available_date=EXCLUDED.available_date,
		  until_date=EXCLUDED.until_date, due_date=EXCLUDED.due_date,
		  settings_json=EXCLUDED.settings_json, questions_json=EXCLUDED.questions_json`,
		q.ID, q.Course, q.Title, q.Description, q.Published,
		q.AvailableDate, q.UntilDate, q.DueDate, string(sj), string(qj),
		q.CreatedBy, q.CreatedAt.Unix())
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}

const quizColumns = `id,course_id,title,description,published,available_date,until_date,due_date,
	settings_json,questions_json,created_by,created_at,published_by,published_at,unpublished_by,unpublished_at`

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListQuizzesForCourse(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE course_id=$1 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *SQLStore) SetPublished(ctx context.Context, id string, published bool, by string) (Quiz, error) {
	now := time.Now().Unix()
	var err error
	if published {
		_, err = s.db.ExecContext(ctx,
			`UPDATE quizzes SET published=$1, published_by=$2, published_at=$3, unpublished_by=NULL, unpublished_at=NULL WHERE id=$4`,
			true, by, now, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE quizzes SET published=$1, unpublished_by=$2, unpublished_at=$3 WHERE id=$4`,
			false, by, now, id)
	}
	if err != nil {
		return Quiz{}, err
	}
	return s.GetQuiz(ctx, id)
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return Attempt{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts
		(id,quiz_id,user_id,answers_json,score,total_points,attempt_number,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.Quiz, a.User, string(aj), a.Score, a.TotalPoints, a.AttemptNumber, a.CreatedAt.Unix())
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,quiz_id,user_id,answers_json,score,total_points,attempt_number,created_at
		   FROM quiz_attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) ListAttemptsByQuiz(ctx context.Context, quizID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,user_id,answers_json,score,total_points,attempt_number,created_at
		   FROM quiz_attempts WHERE quiz_id=$1 ORDER BY created_at DESC, attempt_number DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (s *SQLStore) ListAttemptsByUserAndQuiz(ctx context.Context, userID, quizID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,user_id,answers_json,score,total_points,attempt_number,created_at
		   FROM quiz_attempts WHERE quiz_id=$1 AND user_id=$2 ORDER BY created_at DESC, attempt_number DESC`,
		quizID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var sj, qj string
	var createdBy, pubBy, unpubBy sql.NullString
	var createdAt int64
	var pubAt, unpubAt sql.NullInt64
	err := row.Scan(&q.ID, &q.Course, &q.Title, &q.Description, &q.Published,
		&q.AvailableDate, &q.UntilDate, &q.DueDate, &sj, &qj,
		&createdBy, &createdAt, &pubBy, &pubAt, &unpubBy, &unpubAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(sj), &q.Settings); err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qj), &q.Questions); err != nil {
		return Quiz{}, err
	}
	q.CreatedBy = createdBy.String
	q.CreatedAt = time.Unix(createdAt, 0)
	q.PublishedBy = pubBy.String
	if pubAt.Valid {
		t := time.Unix(pubAt.Int64, 0)
		q.PublishedAt = &t
	}
	q.UnpublishedBy = unpubBy.String
	if unpubAt.Valid {
		t := time.Unix(unpubAt.Int64, 0)
		q.UnpublishedAt = &t
	}
	return q, nil
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var (
		a         Attempt
		aj        string
		createdAt int64
	)
	err := row.Scan(&a.ID, &a.Quiz, &a.User, &aj, &a.Score, &a.TotalPoints, &a.AttemptNumber, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
		a.Answers = nil
	}
	a.CreatedAt = time.Unix(createdAt, 0)
	return a, nil
}

func collectAttempts(rows *sql.Rows) ([]Attempt, error) {
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
