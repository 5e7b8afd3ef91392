package domain

// EntryKey identifies a word entry by its term pair. Single-term entries carry
// an empty Secondary.
type EntryKey struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Terms returns the non-empty terms of the key in order.
func (k EntryKey) Terms() []string {
	if k.Secondary == "" {
		return []string{k.Primary}
	}
	return []string{k.Primary, k.Secondary}
}

// WordEntry is a single flashcard: one or two English terms sharing a meaning.
type WordEntry struct {
	Primary    string `json:"english1"`
	Secondary  string `json:"english2"`
	Meaning    string `json:"chinese"`
	Score      int    `json:"scoreValue"`
	AcquiredOn string `json:"date"`
}

// Key returns the identity of the entry.
func (w WordEntry) Key() EntryKey {
	return EntryKey{Primary: w.Primary, Secondary: w.Secondary}
}

// WrongEntry records a missed meaning together with its correct terms.
type WrongEntry struct {
	Meaning   string `json:"chinese"`
	Primary   string `json:"english1"`
	Secondary string `json:"english2"`
}

// Key returns the identity of the word entry the wrong entry points at.
func (w WrongEntry) Key() EntryKey {
	return EntryKey{Primary: w.Primary, Secondary: w.Secondary}
}

// Mode selects the quiz style.
type Mode string

const (
	ModeMemory Mode = "memory"
	ModeHard   Mode = "hard"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeMemory || m == ModeHard
}

// Kind distinguishes regular drills from wrong-answer review.
type Kind string

const (
	KindDrill  Kind = "drill"
	KindReview Kind = "review"
)

// Stage is the selection step of the presented question.
type Stage string

const (
	StageMeaningChoice Stage = "meaning_choice"
	StageTermChoice    Stage = "term_choice"
	StageScored        Stage = "scored"
	StageFinished      Stage = "finished"
)

// Outcome is the result of a scored question.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// Filter picks the entries that make up a drill pool. Exactly one of the
// fields is expected to be set; the zero value selects every entry.
type Filter struct {
	Date       string `json:"date,omitempty"`
	Struggling bool   `json:"struggling,omitempty"`
}

// Match reports whether the entry belongs to the pool.
func (f Filter) Match(w WordEntry) bool {
	switch {
	case f.Struggling:
		return w.Score < 0
	case f.Date != "":
		return w.AcquiredOn == f.Date
	default:
		return true
	}
}

// Selection is a user's answer to the presented question.
type Selection struct {
	Meaning string   `json:"meaning,omitempty"`
	Terms   []string `json:"terms"`
}

// Choice is one selectable option. Correct, Chosen and Meaning are only
// populated once the question has been scored.
type Choice struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
	Chosen  bool   `json:"chosen,omitempty"`
	Meaning string `json:"meaning,omitempty"`
}

// QuestionView is the presentation-ready form of the current question.
type QuestionView struct {
	SessionID      string   `json:"sessionId"`
	Kind           Kind     `json:"kind"`
	Mode           Mode     `json:"mode"`
	Stage          Stage    `json:"stage"`
	Number         int      `json:"number"`
	Total          int      `json:"total"`
	Prompt         string   `json:"prompt,omitempty"`
	ChosenMeaning  string   `json:"chosenMeaning,omitempty"`
	MeaningChoices []Choice `json:"meaningChoices,omitempty"`
	TermChoices    []Choice `json:"termChoices,omitempty"`
	Outcome        Outcome  `json:"outcome,omitempty"`
}

// Finished reports whether the view is the terminal view of a session.
func (v QuestionView) Finished() bool {
	return v.Stage == StageFinished
}

// Result summarizes a scored question.
type Result struct {
	Outcome    Outcome      `json:"outcome"`
	Score      int          `json:"score"`
	WrongCount int          `json:"wrongCount"`
	View       QuestionView `json:"view"`
}

// Correct reports whether the answer was right.
func (r Result) Correct() bool {
	return r.Outcome == OutcomeCorrect
}

// SessionHandle identifies a started session.
type SessionHandle struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	Mode Mode   `json:"mode"`
	Size int    `json:"size"`
}

// Mastery is a coarse band derived from an entry's score.
type Mastery string

const (
	MasteryStruggling Mastery = "struggling"
	MasteryWeak       Mastery = "weak"
	MasteryNew        Mastery = "new"
	MasteryLearning   Mastery = "learning"
	MasteryMastered   Mastery = "mastered"
)

// FlashCard is the rendered form of a word entry.
type FlashCard struct {
	Primary   string  `json:"primary"`
	Secondary string  `json:"secondary,omitempty"`
	Meaning   string  `json:"meaning"`
	Score     int     `json:"score"`
	Mastery   Mastery `json:"mastery"`
}

// DateGroup holds the cards acquired on one date.
type DateGroup struct {
	Date  string      `json:"date"`
	Cards []FlashCard `json:"cards"`
}

// Deck is the full flashcard view for a user.
type Deck struct {
	Username  string       `json:"username"`
	Groups    []DateGroup  `json:"groups"`
	QuizDates []string     `json:"quizDates"`
	Wrong     []WrongEntry `json:"wrong"`
	WordCount int          `json:"wordCount"`
}
