package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vocab-drill-service/internal/app"
	"vocab-drill-service/internal/domain"
)

type WSHandler struct {
	service  *app.VocabService
	logger   *zap.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	closing  bool
	handlers sync.WaitGroup
}

func NewWSHandler(service *app.VocabService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
		conns:    make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode       string `json:"mode" validate:"omitempty,oneof=memory hard"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Struggling bool   `json:"struggling"`
}

type reviewPayload struct {
	Mode string `json:"mode" validate:"omitempty,oneof=memory hard"`
}

type chooseMeaningPayload struct {
	Meaning string `json:"meaning" validate:"required"`
}

type submitPayload struct {
	Meaning string   `json:"meaning"`
	Terms   []string `json:"terms" validate:"required,min=1,dive,required"`
}

type removeWrongPayload struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type importPayload struct {
	Text string `json:"text" validate:"required"`
}

type importedPayload struct {
	Added int `json:"added"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// vocabulary drill use cases. One connection serves one user.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "missing username", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	if !h.track(conn) {
		_ = conn.Close()
		return
	}
	defer h.untrack(conn)

	ctx := r.Context()
	if _, err := h.service.Load(ctx, username); err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer h.service.Unload(context.Background(), username)

	updates, cancel, err := h.service.Subscribe(ctx, username)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()

	logger := h.logger.With(zap.String("username", username))
	logger.Info("ws connected")
	defer logger.Info("ws disconnected")

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write failed", zap.Error(err))
				return
			}
		}
	}()

	// The subscription delivers the initial deck, so no explicit deck
	// message is sent on connect.
	go func() {
		defer close(updatesDone)
		for {
			select {
			case deck, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "deck", Payload: deck}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	c := &wsConn{handler: h, username: username, logger: logger}
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range c.handle(ctx, inbound) {
			select {
			case send <- msg:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// Shutdown closes every open connection and waits for their handlers to
// finish, so no commit can start after it returns. New connections are
// refused from then on.
func (h *WSHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	for conn := range h.conns {
		_ = conn.Close()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *WSHandler) track(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.conns[conn] = struct{}{}
	h.handlers.Add(1)
	return true
}

func (h *WSHandler) untrack(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
	h.handlers.Done()
}

// wsConn is the per-connection state: the user and their active session.
type wsConn struct {
	handler   *WSHandler
	username  string
	sessionID string
	logger    *zap.Logger
}

func (c *wsConn) handle(ctx context.Context, in inboundMessage) []outboundMessage[any] {
	svc := c.handler.service
	switch in.Type {
	case "start":
		var p startPayload
		if err := c.decode(in.Payload, &p); err != nil {
			return reply(errorMessage(err))
		}
		filter := domain.Filter{Date: p.Date, Struggling: p.Struggling}
		handle, view, err := svc.StartSession(ctx, c.username, filter, domain.Mode(p.Mode))
		if err != nil {
			return reply(errorMessage(err))
		}
		c.sessionID = handle.ID
		return reply(question(view))
	case "review":
		var p reviewPayload
		if err := c.decode(in.Payload, &p); err != nil {
			return reply(errorMessage(err))
		}
		handle, view, err := svc.StartReview(ctx, c.username, domain.Mode(p.Mode))
		if err != nil {
			return reply(errorMessage(err))
		}
		c.sessionID = handle.ID
		return reply(question(view))
	case "present":
		view, err := svc.Present(ctx, c.username, c.sessionID)
		if err != nil {
			return reply(errorMessage(err))
		}
		return reply(question(view))
	case "chooseMeaning":
		var p chooseMeaningPayload
		if err := c.decode(in.Payload, &p); err != nil {
			return reply(errorMessage(err))
		}
		view, err := svc.ChooseMeaning(ctx, c.username, c.sessionID, p.Meaning)
		if err != nil {
			return reply(errorMessage(err))
		}
		return reply(question(view))
	case "submit":
		var p submitPayload
		if err := c.decode(in.Payload, &p); err != nil {
			return reply(errorMessage(err))
		}
		res, err := svc.Submit(ctx, c.username, c.sessionID, domain.Selection{Meaning: p.Meaning, Terms: p.Terms})
		if err != nil {
			return reply(errorMessage(err))
		}
		return reply(outboundMessage[any]{Type: "result", Payload: res})
	case "giveUp":
		res, err := svc.GiveUp(ctx, c.username, c.sessionID)
		if err != nil {
			return reply(errorMessage(err))
		}
		return reply(outboundMessage[any]{Type: "result", Payload: res})
	case "removeCurrent":
		view, err := svc.RemoveCurrent(ctx, c.username, c.sessionID)
		if err != nil {
			return reply(errorMessage(err))
		}
		return reply(question(view))
	case "removeWrong":
		var p removeWrongPayload
		if err := c.decode(in.Payload, &p); err != nil {
			return reply(errorMessage(err))
		}
		if err := svc.RemoveWrongEntry(ctx, c.username, *p.Index); err != nil {
			return reply(errorMessage(err))
		}
		return nil
	case "import":
		var p importPayload
		if err := c.decode(in.Payload, &p); err != nil {
			return reply(errorMessage(err))
		}
		added, err := svc.ImportWords(ctx, c.username, p.Text)
		if err != nil {
			return reply(errorMessage(err))
		}
		return reply(outboundMessage[any]{Type: "imported", Payload: importedPayload{Added: added}})
	case "flashcards":
		deck, err := svc.Flashcards(ctx, c.username)
		if err != nil {
			return reply(errorMessage(err))
		}
		return reply(outboundMessage[any]{Type: "deck", Payload: deck})
	default:
		c.logger.Debug("unsupported message type", zap.String("type", in.Type))
		return reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "unsupported", Message: "unsupported message type"}})
	}
}

var errInvalidPayload = errors.New("invalid payload")

// decode unmarshals an optional payload and validates it. A missing payload
// decodes to the zero value.
func (c *wsConn) decode(raw json.RawMessage, dst any) error {
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, dst); err != nil {
			return errInvalidPayload
		}
	}
	if err := c.handler.validate.Struct(dst); err != nil {
		c.logger.Debug("payload rejected", zap.Error(err))
		return errors.Wrap(errInvalidPayload, err.Error())
	}
	return nil
}

func reply(msgs ...outboundMessage[any]) []outboundMessage[any] {
	return msgs
}

func question(view domain.QuestionView) outboundMessage[any] {
	return outboundMessage[any]{Type: "question", Payload: view}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, domain.ErrEmptyPool):
		return "empty_pool"
	case errors.Is(err, domain.ErrMalformedSelection):
		return "malformed_selection"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrRemoteLoad):
		return "remote_load"
	case errors.Is(err, domain.ErrNotLoaded):
		return "not_loaded"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domain.ErrSessionFinished):
		return "session_finished"
	case errors.Is(err, domain.ErrQuestionScored):
		return "question_scored"
	case errors.Is(err, domain.ErrStageMismatch):
		return "stage_mismatch"
	case errors.Is(err, domain.ErrNotReview):
		return "not_review"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return "index_out_of_range"
	default:
		return "internal"
	}
}
