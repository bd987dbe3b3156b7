package quiz

import "time"

// Question types.
const (
	TypeMCQ  = "mcq"
	TypeTF   = "tf"
	TypeFill = "fill"
)

type Choice struct {
	ID        string `json:"id"`
	Text      string `json:"text,omitempty"`
	IsCorrect bool   `json:"isCorrect"`
}

type Blank struct {
	ID      string   `json:"id"`
	Answers []string `json:"answers"`
}

type Question struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"` // mcq | tf | fill
	Title  string  `json:"title,omitempty"`
	Body   string  `json:"body,omitempty"`
	Points float64 `json:"points"`

	Choices []Choice `json:"choices,omitempty"` // mcq/tf
	Blanks  []Blank  `json:"blanks,omitempty"`  // fill
}

type Settings struct {
	QuizType                    string `json:"quizType"`
	ShuffleAnswers              bool   `json:"shuffleAnswers"`
	TimeLimitMinutes            int    `json:"timeLimitMinutes"`
	MultipleAttempts            bool   `json:"multipleAttempts"`
	MaxAttempts                 int    `json:"maxAttempts"`
	ShowCorrectAnswers          bool   `json:"showCorrectAnswers"`
	AccessCode                  string `json:"accessCode"`
	OneQuestionAtATime          bool   `json:"oneQuestionAtATime"`
	WebcamRequired              bool   `json:"webcamRequired"`
	LockQuestionsAfterAnswering bool   `json:"lockQuestionsAfterAnswering"`
}

// DefaultSettings mirrors the defaults applied when a quiz is created
// without explicit settings.
func DefaultSettings() Settings {
	return Settings{
		QuizType:           "graded",
		ShuffleAnswers:     true,
		TimeLimitMinutes:   20,
		MultipleAttempts:   false,
		MaxAttempts:        1,
		OneQuestionAtATime: true,
	}
}

type Quiz struct {
	ID          string `json:"id"`
	Course      string `json:"course"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Published   bool   `json:"published"`

	// Availability window, date-only or RFC3339 strings as entered by faculty.
	AvailableDate string `json:"availableDate,omitempty"`
	UntilDate     string `json:"untilDate,omitempty"`
	DueDate       string `json:"dueDate,omitempty"`

	Settings  Settings   `json:"settings"`
	Questions []Question `json:"questions"`

	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	PublishedBy   string     `json:"publishedBy,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	UnpublishedBy string     `json:"unpublishedBy,omitempty"`
	UnpublishedAt *time.Time `json:"unpublishedAt,omitempty"`
}

// TotalPoints sums the points of every question.
func (q Quiz) TotalPoints() float64 {
	total := 0.0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Answer is one submitted answer. For mcq/tf the payload is a choice id
// (string); for fill it is a map of blank id to the learner's text.
type Answer struct {
	QuestionID string      `json:"questionId"`
	Answer     interface{} `json:"answer"`
}

type Attempt struct {
	ID            string    `json:"id"`
	Quiz          string    `json:"quiz"`
	User          string    `json:"user"`
	Answers       []Answer  `json:"answers"`
	Score         float64   `json:"score"`
	TotalPoints   float64   `json:"totalPoints"`
	AttemptNumber int       `json:"attemptNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity is the resolved caller, handed in by the HTTP layer.
type Identity struct {
	ID   string
	Role string
}

// AvailableAt reports whether the quiz's availability window contains now.
// Unset or unparseable bounds do not restrict access.
func (q Quiz) AvailableAt(now time.Time) bool {
	if t, ok := parseDate(q.AvailableDate); ok && t.After(now) {
		return false
	}
	if t, ok := parseDate(q.UntilDate); ok && t.Before(now) {
		return false
	}
	return true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
