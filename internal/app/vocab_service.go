package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"vocab-drill-service/internal/domain"
	"vocab-drill-service/internal/quiz"
)

// RecordRepository abstracts where user records come from (remote REST,
// Postgres, cached in Redis or memory).
type RecordRepository interface {
	GetUser(ctx context.Context, username string) (domain.UserRecord, error)
	SaveUser(ctx context.Context, record domain.UserRecord) error
}

// SessionRepository stores quiz session state by session ID.
type SessionRepository interface {
	Save(ctx context.Context, state quiz.SessionState) error
	Get(ctx context.Context, id string) (quiz.SessionState, bool, error)
	Delete(ctx context.Context, id string) error
}

// Options tunes the service; zero values pick defaults.
type Options struct {
	WriteTimeout     time.Duration
	WriteConcurrency int64
	Now              func() time.Time
}

// VocabService contains the vocabulary drill use cases.
type VocabService struct {
	records  RecordRepository
	sessions SessionRepository
	engine   *quiz.Engine
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	writeTimeout time.Duration
	writeSem     *semaphore.Weighted
	inflight     sync.WaitGroup

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

func NewVocabService(records RecordRepository, sessions SessionRepository, engine *quiz.Engine, logger *zap.Logger, opts Options) *VocabService {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.WriteConcurrency <= 0 {
		opts.WriteConcurrency = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VocabService{
		records:      records,
		sessions:     sessions,
		engine:       engine,
		logger:       logger,
		now:          opts.Now,
		newID:        uuid.NewString,
		writeTimeout: opts.WriteTimeout,
		writeSem:     semaphore.NewWeighted(opts.WriteConcurrency),
		workspaces:   make(map[string]*Workspace),
	}
}

// Load seeds the user's workspace from the record store. A user that is
// already loaded keeps its local state.
func (s *VocabService) Load(ctx context.Context, username string) (domain.Deck, error) {
	if ws, ok := s.workspace(username); ok {
		ws.mu.Lock()
		defer ws.mu.Unlock()
		return ws.deckLocked(), nil
	}

	record, err := s.records.GetUser(ctx, username)
	if err != nil {
		s.logger.Warn("load user failed", zap.String("username", username), zap.Error(err))
		return domain.Deck{}, domain.WrapOp(domain.ErrRemoteLoad, err)
	}
	if record.Username == "" {
		record.Username = username
	}

	s.mu.Lock()
	ws, ok := s.workspaces[username]
	if !ok {
		ws = newWorkspace(record)
		s.workspaces[username] = ws
	}
	s.mu.Unlock()

	ws.mu.Lock()
	defer ws.mu.Unlock()
	s.logger.Info("user loaded",
		zap.String("username", username),
		zap.Int("words", len(ws.book.Words)),
		zap.Int("wrong", len(ws.book.Wrong)),
	)
	return ws.deckLocked(), nil
}

// Flashcards returns the current deck of a loaded user.
func (s *VocabService) Flashcards(_ context.Context, username string) (domain.Deck, error) {
	ws, err := s.mustWorkspace(username)
	if err != nil {
		return domain.Deck{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.deckLocked(), nil
}

// StartSession begins a shuffled drill and presents its first question. Any
// previous session of the user is discarded.
func (s *VocabService) StartSession(ctx context.Context, username string, filter domain.Filter, mode domain.Mode) (domain.SessionHandle, domain.QuestionView, error) {
	return s.start(ctx, username, func(ws *Workspace, id string) (quiz.SessionState, error) {
		return s.engine.Start(id, ws.book, filter, mode)
	})
}

// StartReview begins a session over the wrong-answer set.
func (s *VocabService) StartReview(ctx context.Context, username string, mode domain.Mode) (domain.SessionHandle, domain.QuestionView, error) {
	return s.start(ctx, username, func(ws *Workspace, id string) (quiz.SessionState, error) {
		return s.engine.StartReview(id, ws.book, mode)
	})
}

func (s *VocabService) start(ctx context.Context, username string, build func(*Workspace, string) (quiz.SessionState, error)) (domain.SessionHandle, domain.QuestionView, error) {
	ws, err := s.mustWorkspace(username)
	if err != nil {
		return domain.SessionHandle{}, domain.QuestionView{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	state, err := build(ws, s.newID())
	if err != nil {
		return domain.SessionHandle{}, domain.QuestionView{}, err
	}
	state.Username = username
	state, view := s.engine.Present(state, ws.book)

	if ws.activeSession != "" {
		if err := s.sessions.Delete(ctx, ws.activeSession); err != nil {
			s.logger.Warn("drop previous session failed", zap.String("sessionId", ws.activeSession), zap.Error(err))
		}
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		return domain.SessionHandle{}, domain.QuestionView{}, err
	}
	ws.activeSession = state.ID
	s.logger.Info("session started",
		zap.String("username", username),
		zap.String("sessionId", state.ID),
		zap.String("kind", string(state.Kind)),
		zap.String("mode", string(state.Mode)),
		zap.Int("size", len(state.Pool)),
	)
	return state.Handle(), view, nil
}

// Present returns the current question, generating it if needed.
func (s *VocabService) Present(ctx context.Context, username, sessionID string) (domain.QuestionView, error) {
	var view domain.QuestionView
	err := s.withSession(ctx, username, sessionID, func(ws *Workspace, state quiz.SessionState) (quiz.SessionState, bool, error) {
		state, view = s.engine.Present(state, ws.book)
		return state, false, nil
	})
	return view, err
}

// ChooseMeaning locks the meaning stage of a hard-mode question.
func (s *VocabService) ChooseMeaning(ctx context.Context, username, sessionID, meaning string) (domain.QuestionView, error) {
	var view domain.QuestionView
	err := s.withSession(ctx, username, sessionID, func(ws *Workspace, state quiz.SessionState) (quiz.SessionState, bool, error) {
		next, v, err := s.engine.ChooseMeaning(state, ws.book, meaning)
		view = v
		return next, false, err
	})
	return view, err
}

// Submit scores a selection and writes the updated record back.
func (s *VocabService) Submit(ctx context.Context, username, sessionID string, sel domain.Selection) (domain.Result, error) {
	var res domain.Result
	err := s.withSession(ctx, username, sessionID, func(ws *Workspace, state quiz.SessionState) (quiz.SessionState, bool, error) {
		next, r, err := s.engine.Submit(state, ws.book, sel)
		res = r
		return next, err == nil, err
	})
	return res, err
}

// GiveUp scores the current question as missed and writes the record back.
func (s *VocabService) GiveUp(ctx context.Context, username, sessionID string) (domain.Result, error) {
	var res domain.Result
	err := s.withSession(ctx, username, sessionID, func(ws *Workspace, state quiz.SessionState) (quiz.SessionState, bool, error) {
		next, r, err := s.engine.GiveUp(state, ws.book)
		res = r
		return next, err == nil, err
	})
	return res, err
}

// RemoveCurrent deletes the entry shown in a review session.
func (s *VocabService) RemoveCurrent(ctx context.Context, username, sessionID string) (domain.QuestionView, error) {
	var view domain.QuestionView
	err := s.withSession(ctx, username, sessionID, func(ws *Workspace, state quiz.SessionState) (quiz.SessionState, bool, error) {
		next, v, err := s.engine.RemoveCurrent(state, ws.book)
		view = v
		return next, err == nil, err
	})
	return view, err
}

// RemoveWrongEntry deletes the wrong-answer entry at index.
func (s *VocabService) RemoveWrongEntry(_ context.Context, username string, index int) error {
	ws, err := s.mustWorkspace(username)
	if err != nil {
		return err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	removed, err := ws.book.RemoveWrongAt(index)
	if err != nil {
		return err
	}
	s.logger.Info("wrong entry removed", zap.String("username", username), zap.String("meaning", removed.Meaning))
	s.commitLocked(ws)
	return nil
}

// ImportWords parses bulk text into new entries dated today and returns how
// many were added.
func (s *VocabService) ImportWords(_ context.Context, username, text string) (int, error) {
	ws, err := s.mustWorkspace(username)
	if err != nil {
		return 0, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	entries := quiz.ParseBulk(text, s.today())
	added := ws.book.Import(entries)
	s.logger.Info("words imported",
		zap.String("username", username),
		zap.Int("parsed", len(entries)),
		zap.Int("added", added),
	)
	if added > 0 {
		s.commitLocked(ws)
	}
	return added, nil
}

// Subscribe returns a channel that receives deck updates for a user.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *VocabService) Subscribe(_ context.Context, username string) (<-chan domain.Deck, func(), error) {
	ws, err := s.mustWorkspace(username)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := ws.subscribe()
	return ch, cancel, nil
}

// Unload drops a user's workspace once nobody is subscribed to it and its
// state has reached the record store. A workspace with a pending or failed
// write-back stays loaded, so the next Load keeps the local state.
func (s *VocabService) Unload(ctx context.Context, username string) {
	s.mu.Lock()
	ws, ok := s.workspaces[username]
	if !ok || ws.hasSubscribers() {
		s.mu.Unlock()
		return
	}
	ws.mu.Lock()
	if !ws.settledLocked() {
		ws.mu.Unlock()
		s.mu.Unlock()
		s.logger.Info("keeping unsaved workspace", zap.String("username", username))
		return
	}
	active := ws.activeSession
	ws.mu.Unlock()
	delete(s.workspaces, username)
	s.mu.Unlock()

	if active != "" {
		_ = s.sessions.Delete(ctx, active)
	}
}

// Flush waits for in-flight write-backs.
func (s *VocabService) Flush() {
	s.inflight.Wait()
}

func (s *VocabService) withSession(ctx context.Context, username, sessionID string, step func(*Workspace, quiz.SessionState) (quiz.SessionState, bool, error)) error {
	ws, err := s.mustWorkspace(username)
	if err != nil {
		return err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	state, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok || state.Username != username {
		return domain.ErrSessionNotFound
	}

	next, mutated, err := step(ws, state)
	if err != nil {
		return err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		return err
	}
	if mutated {
		s.commitLocked(ws)
	}
	return nil
}

// commitLocked publishes the new deck and queues a write-back. Each
// workspace has at most one writer, so saves land in commit order and a
// burst of commits collapses into the latest snapshot.
func (s *VocabService) commitLocked(ws *Workspace) {
	ws.broadcastLocked()
	snapshot := ws.snapshotLocked()
	ws.pending = &snapshot
	if ws.writing {
		return
	}
	ws.writing = true
	s.inflight.Add(1)
	go s.writeLoop(ws)
}

func (s *VocabService) writeLoop(ws *Workspace) {
	defer s.inflight.Done()
	for {
		ws.mu.Lock()
		snapshot := ws.pending
		ws.pending = nil
		if snapshot == nil {
			ws.writing = false
			ws.mu.Unlock()
			return
		}
		ws.mu.Unlock()
		saved := s.writeBack(*snapshot)

		ws.mu.Lock()
		ws.dirty = !saved
		ws.mu.Unlock()
	}
}

// writeBack overwrites the remote record and reports whether it landed.
// Failures are logged only; local state stays authoritative.
func (s *VocabService) writeBack(snapshot domain.UserRecord) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		s.logger.Error("write-back dropped", zap.String("username", snapshot.Username), zap.Error(err))
		return false
	}
	defer s.writeSem.Release(1)

	if err := s.records.SaveUser(ctx, snapshot); err != nil {
		s.logger.Error("write-back failed",
			zap.String("username", snapshot.Username),
			zap.Error(domain.WrapOp(domain.ErrRemoteWrite, err)),
		)
		return false
	}
	s.logger.Debug("write-back saved", zap.String("username", snapshot.Username))
	return true
}

func (s *VocabService) workspace(username string) (*Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[username]
	return ws, ok
}

func (s *VocabService) mustWorkspace(username string) (*Workspace, error) {
	ws, ok := s.workspace(username)
	if !ok {
		return nil, domain.ErrNotLoaded
	}
	return ws, nil
}

func (s *VocabService) today() string {
	return s.now().UTC().Format("2006-01-02")
}
