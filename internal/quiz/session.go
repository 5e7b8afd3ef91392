package quiz

import (
	"strings"

	"github.com/pkg/errors"

	"vocab-drill-service/internal/domain"
)

// Policy tunes question generation and review behavior.
type Policy struct {
	// MemoryDistractors is the number of wrong terms offered in memory mode.
	MemoryDistractors int
	// HardDistractors is the number of wrong terms offered in hard mode.
	HardDistractors int
	// ReviewAutoRemove drops an entry from the wrong-answer set when it is
	// answered correctly during review.
	ReviewAutoRemove bool
}

// DefaultPolicy mirrors the classic two-correct, four-wrong layout.
func DefaultPolicy() Policy {
	return Policy{MemoryDistractors: 4, HardDistractors: 4}
}

// PoolItem is one question in a session pool.
type PoolItem struct {
	Key     domain.EntryKey `json:"key"`
	Meaning string          `json:"meaning"`
}

// Question is the presented question for the item under the cursor.
type Question struct {
	Item           PoolItem       `json:"item"`
	Number         int            `json:"number"`
	CorrectTerms   []string       `json:"correctTerms"`
	MeaningChoices []string       `json:"meaningChoices,omitempty"`
	TermChoices    []string       `json:"termChoices"`
	Stage          domain.Stage   `json:"stage"`
	ChosenMeaning  string         `json:"chosenMeaning,omitempty"`
	ChosenTerms    []string       `json:"chosenTerms,omitempty"`
	Outcome        domain.Outcome `json:"outcome,omitempty"`
	// Removed is set when the scored item was taken out of the pool.
	Removed bool `json:"removed,omitempty"`
}

// SessionState is the complete state of one quiz session. Transitions take a
// state and return the next one; the input is never modified.
type SessionState struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Kind     domain.Kind `json:"kind"`
	Mode     domain.Mode `json:"mode"`
	Pool     []PoolItem  `json:"pool"`
	Cursor   int         `json:"cursor"`
	Question *Question   `json:"question,omitempty"`
}

// Finished reports whether every pool item has been answered.
func (s SessionState) Finished() bool {
	return s.Cursor >= len(s.Pool)
}

// Handle summarizes the session for callers.
func (s SessionState) Handle() domain.SessionHandle {
	return domain.SessionHandle{ID: s.ID, Kind: s.Kind, Mode: s.Mode, Size: len(s.Pool)}
}

func (s SessionState) clone() SessionState {
	out := s
	out.Pool = append([]PoolItem(nil), s.Pool...)
	if s.Question != nil {
		q := *s.Question
		q.CorrectTerms = append([]string(nil), q.CorrectTerms...)
		q.MeaningChoices = append([]string(nil), q.MeaningChoices...)
		q.TermChoices = append([]string(nil), q.TermChoices...)
		q.ChosenTerms = append([]string(nil), q.ChosenTerms...)
		out.Question = &q
	}
	return out
}

// Engine runs session transitions against a Book.
type Engine struct {
	rnd    Rand
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return NewEngineWithRand(policy, globalRand{})
}

// NewEngineWithRand is used by tests to make shuffles reproducible.
func NewEngineWithRand(policy Policy, rnd Rand) *Engine {
	return &Engine{rnd: rnd, policy: policy}
}

// Start builds a shuffled drill over the entries matching filter.
func (e *Engine) Start(id string, book *Book, filter domain.Filter, mode domain.Mode) (SessionState, error) {
	mode, err := normalizeMode(mode)
	if err != nil {
		return SessionState{}, err
	}
	pool := make([]PoolItem, 0, len(book.Words))
	for _, w := range book.Words {
		if filter.Match(w) {
			pool = append(pool, PoolItem{Key: w.Key(), Meaning: w.Meaning})
		}
	}
	if len(pool) == 0 {
		return SessionState{}, domain.ErrEmptyPool
	}
	e.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return SessionState{ID: id, Kind: domain.KindDrill, Mode: mode, Pool: pool}, nil
}

// StartReview builds a session over the wrong-answer set in its stored order.
func (e *Engine) StartReview(id string, book *Book, mode domain.Mode) (SessionState, error) {
	mode, err := normalizeMode(mode)
	if err != nil {
		return SessionState{}, err
	}
	if len(book.Wrong) == 0 {
		return SessionState{}, domain.ErrEmptyPool
	}
	pool := make([]PoolItem, 0, len(book.Wrong))
	for _, w := range book.Wrong {
		pool = append(pool, PoolItem{Key: w.Key(), Meaning: w.Meaning})
	}
	return SessionState{ID: id, Kind: domain.KindReview, Mode: mode, Pool: pool}, nil
}

// Present shows the question under the cursor. A question that is presented
// but not yet answered is returned unchanged; a finished session yields the
// terminal view.
func (e *Engine) Present(s SessionState, book *Book) (SessionState, domain.QuestionView) {
	if s.Finished() {
		s = s.clone()
		s.Question = nil
		return s, e.View(s, book)
	}
	if s.Question != nil && s.Question.Stage != domain.StageScored {
		return s, e.View(s, book)
	}
	s = s.clone()
	s.Question = e.newQuestion(s, book)
	return s, e.View(s, book)
}

// ChooseMeaning locks the meaning in the first stage of a hard question.
func (e *Engine) ChooseMeaning(s SessionState, book *Book, meaning string) (SessionState, domain.QuestionView, error) {
	if s.Finished() {
		return s, e.View(s, book), domain.ErrSessionFinished
	}
	q := s.Question
	if s.Mode != domain.ModeHard || q == nil || q.Stage != domain.StageMeaningChoice {
		return s, e.View(s, book), domain.ErrStageMismatch
	}
	if !containsString(q.MeaningChoices, meaning) {
		return s, e.View(s, book), errors.Wrapf(domain.ErrMalformedSelection, "meaning %q was not offered", meaning)
	}
	s = s.clone()
	s.Question.ChosenMeaning = meaning
	s.Question.Stage = domain.StageTermChoice
	return s, e.View(s, book), nil
}

// Submit scores the user's selection for the current question.
func (e *Engine) Submit(s SessionState, book *Book, sel domain.Selection) (SessionState, domain.Result, error) {
	s, err := e.answerable(s, book)
	if err != nil {
		return s, domain.Result{}, err
	}
	q := s.Question

	terms := distinctTerms(sel.Terms)
	if len(terms) != len(sel.Terms) || len(terms) != len(q.CorrectTerms) {
		return s, domain.Result{}, errors.Wrapf(domain.ErrMalformedSelection, "expected %d distinct terms, got %d", len(q.CorrectTerms), len(sel.Terms))
	}

	meaning := ""
	if s.Mode == domain.ModeHard {
		meaning = strings.TrimSpace(sel.Meaning)
		if q.ChosenMeaning != "" {
			if meaning != "" && meaning != q.ChosenMeaning {
				return s, domain.Result{}, errors.Wrap(domain.ErrMalformedSelection, "meaning already chosen")
			}
			meaning = q.ChosenMeaning
		}
		if meaning == "" || !containsString(q.MeaningChoices, meaning) {
			return s, domain.Result{}, errors.Wrap(domain.ErrMalformedSelection, "exactly one offered meaning is required")
		}
	}

	correct := sameSet(terms, q.CorrectTerms)
	if s.Mode == domain.ModeHard && meaning != q.Item.Meaning {
		correct = false
	}
	next, res := e.score(s, book, correct, meaning, terms)
	return next, res, nil
}

// GiveUp scores the current question as missed.
func (e *Engine) GiveUp(s SessionState, book *Book) (SessionState, domain.Result, error) {
	s, err := e.answerable(s, book)
	if err != nil {
		return s, domain.Result{}, err
	}
	next, res := e.score(s, book, false, s.Question.ChosenMeaning, nil)
	return next, res, nil
}

// RemoveCurrent deletes the review item being shown from both the pool and
// the wrong-answer set. The cursor stays put so the following item takes its
// place.
func (e *Engine) RemoveCurrent(s SessionState, book *Book) (SessionState, domain.QuestionView, error) {
	if s.Kind != domain.KindReview {
		return s, e.View(s, book), domain.ErrNotReview
	}
	idx := s.Cursor
	if q := s.Question; q != nil && q.Stage == domain.StageScored {
		if q.Removed {
			return s, e.View(s, book), domain.ErrStageMismatch
		}
		idx = s.Cursor - 1
	}
	if idx < 0 || idx >= len(s.Pool) {
		return s, e.View(s, book), domain.ErrSessionFinished
	}
	s = removePoolItem(s, book, idx)
	s.Question = nil
	s, view := e.Present(s, book)
	return s, view, nil
}

// View renders the session without changing it.
func (e *Engine) View(s SessionState, book *Book) domain.QuestionView {
	view := domain.QuestionView{
		SessionID: s.ID,
		Kind:      s.Kind,
		Mode:      s.Mode,
		Total:     len(s.Pool),
	}
	q := s.Question
	if q == nil {
		if s.Finished() {
			view.Stage = domain.StageFinished
			view.Number = len(s.Pool)
		}
		return view
	}

	view.Stage = q.Stage
	view.Number = q.Number
	view.ChosenMeaning = q.ChosenMeaning
	view.Outcome = q.Outcome
	if s.Mode == domain.ModeMemory {
		view.Prompt = q.Item.Meaning
	}

	revealed := q.Stage == domain.StageScored
	for _, m := range q.MeaningChoices {
		c := domain.Choice{Text: m}
		if revealed {
			c.Correct = m == q.Item.Meaning
			c.Chosen = m == q.ChosenMeaning
		}
		view.MeaningChoices = append(view.MeaningChoices, c)
	}
	if q.Stage == domain.StageMeaningChoice {
		return view
	}
	var meanings map[string]string
	if revealed {
		meanings = TermMeanings(book.Words)
	}
	for _, t := range q.TermChoices {
		c := domain.Choice{Text: t}
		if revealed {
			c.Correct = containsString(q.CorrectTerms, t)
			c.Chosen = containsString(q.ChosenTerms, t)
			c.Meaning = meanings[t]
			if c.Correct {
				c.Meaning = q.Item.Meaning
			}
		}
		view.TermChoices = append(view.TermChoices, c)
	}
	return view
}

func (e *Engine) answerable(s SessionState, book *Book) (SessionState, error) {
	if s.Finished() {
		return s, domain.ErrSessionFinished
	}
	if s.Question != nil && s.Question.Stage == domain.StageScored {
		return s, domain.ErrQuestionScored
	}
	if s.Question == nil {
		s, _ = e.Present(s, book)
	}
	return s, nil
}

func (e *Engine) score(s SessionState, book *Book, correct bool, meaning string, terms []string) (SessionState, domain.Result) {
	s = s.clone()
	q := s.Question

	delta, outcome := -1, domain.OutcomeIncorrect
	if correct {
		delta, outcome = 1, domain.OutcomeCorrect
	}
	newScore, _ := book.AdjustScore(q.Item.Key, delta)
	if !correct {
		book.AddWrong(domain.WrongEntry{
			Meaning:   q.Item.Meaning,
			Primary:   q.Item.Key.Primary,
			Secondary: q.Item.Key.Secondary,
		})
	}

	q.Stage = domain.StageScored
	q.Outcome = outcome
	q.ChosenMeaning = meaning
	q.ChosenTerms = terms
	view := e.View(s, book)

	if correct && s.Kind == domain.KindReview && e.policy.ReviewAutoRemove {
		s = removePoolItem(s, book, s.Cursor)
		s.Question.Removed = true
	} else {
		s.Cursor++
	}
	return s, domain.Result{
		Outcome:    outcome,
		Score:      newScore,
		WrongCount: len(book.Wrong),
		View:       view,
	}
}

func (e *Engine) newQuestion(s SessionState, book *Book) *Question {
	item := s.Pool[s.Cursor]
	correct := item.Key.Terms()
	q := &Question{
		Item:         item,
		Number:       s.Cursor + 1,
		CorrectTerms: correct,
	}

	var distractors []string
	if s.Mode == domain.ModeHard {
		target, ok := book.Entry(item.Key)
		if !ok {
			target = domain.WordEntry{Primary: item.Key.Primary, Secondary: item.Key.Secondary, Meaning: item.Meaning}
		}
		decoy := PickDecoyMeaning(e.rnd, item.Meaning, book.Words)
		q.MeaningChoices = []string{item.Meaning}
		if decoy != "" {
			q.MeaningChoices = append(q.MeaningChoices, decoy)
		}
		e.shuffle(q.MeaningChoices)
		distractors = SelectHardDistractors(e.rnd, target, decoy, book.Words, e.policy.HardDistractors)
		q.Stage = domain.StageMeaningChoice
	} else {
		var pool []string
		for _, g := range GroupByMeaning(book.Words) {
			if g.Meaning != item.Meaning {
				pool = append(pool, g.Terms...)
			}
		}
		distractors = SelectDistractors(e.rnd, correct, pool, e.policy.MemoryDistractors)
		q.Stage = domain.StageTermChoice
	}

	q.TermChoices = append(append([]string{}, correct...), distractors...)
	e.shuffle(q.TermChoices)
	return q
}

func (e *Engine) shuffle(list []string) {
	e.rnd.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
}

// removePoolItem drops pool[idx] and its wrong entry; the cursor ends on idx.
func removePoolItem(s SessionState, book *Book, idx int) SessionState {
	s = s.clone()
	book.RemoveWrong(s.Pool[idx].Meaning)
	s.Pool = append(s.Pool[:idx:idx], s.Pool[idx+1:]...)
	s.Cursor = idx
	return s
}

func normalizeMode(mode domain.Mode) (domain.Mode, error) {
	if mode == "" {
		return domain.ModeMemory, nil
	}
	if !mode.Valid() {
		return "", errors.Wrapf(domain.ErrMalformedSelection, "unknown mode %q", mode)
	}
	return mode, nil
}

func distinctTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || containsString(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !containsString(b, v) {
			return false
		}
	}
	return true
}
