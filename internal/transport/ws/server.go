// Package ws exposes one game engine to websocket clients. Every request is
// answered with a RESULT; accepted requests are followed by a STATE
// broadcast to all sessions.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	persistlog "github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/log"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/protocol"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/game"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/intellect"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/invariant"
)

type Auditor interface {
	WriteAudit(e persistlog.AuditEntry) error
}

type Options struct {
	// AllowDebug admits debug* commands.
	AllowDebug bool
	// QueueSize bounds each session's outbound queue.
	QueueSize int
	Audit     Auditor
	Log       *slog.Logger
}

type Server struct {
	mu  sync.Mutex
	eng *game.Engine

	opts      Options
	log       *slog.Logger
	validator *protocol.Validator
	upgrader  websocket.Upgrader

	sessMu   sync.Mutex
	sessions map[string]chan []byte
	nextSess int
}

func NewServer(eng *game.Engine, opts Options) (*Server, error) {
	v, err := protocol.NewValidator()
	if err != nil {
		return nil, err
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	logger := opts.Log
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		eng:       eng,
		opts:      opts,
		log:       logger,
		validator: v,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		sessions: map[string]chan []byte{},
	}, nil
}

// Do runs fn with exclusive access to the engine.
func (s *Server) Do(fn func(e *game.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.eng)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}
		defer s.leave(sessionID)
		s.log.Info("session opened", "session", sessionID, "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			res, changed := s.Handle(sessionID, msg)
			s.send(sessionID, res)
			if changed {
				s.broadcastState()
			}
		}
		s.log.Info("session closed", "session", sessionID)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (string, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello || s.validator.Validate(protocol.TypeHello, msg) != nil {
		closeWith(conn, "expected HELLO")
		return "", nil
	}
	if base.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}

	s.sessMu.Lock()
	s.nextSess++
	id := fmt.Sprintf("S%d", s.nextSess)
	out := make(chan []byte, s.opts.QueueSize)
	s.sessions[id] = out
	s.sessMu.Unlock()

	var welcome protocol.WelcomeMsg
	var state protocol.StateMsg
	s.Do(func(e *game.Engine) {
		welcome = protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       id,
			Seed:            e.Seed(),
			Intellects:      intellect.Names(),
			Catalogs:        e.Rules().C.Digests(),
		}
		state = stateOf(e)
	})
	if writeJSON(conn, welcome) != nil || writeJSON(conn, state) != nil {
		s.leave(id)
		return "", nil
	}
	return id, out
}

// Handle answers one client message. changed reports whether the engine
// state may have moved.
func (s *Server) Handle(sessionID string, msg []byte) (res protocol.ResultMsg, changed bool) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewResult("", false, protocol.ErrProtoBadRequest, "malformed json"), false
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewResult("", false, protocol.ErrProtoBadRequest, "bad protocol_version"), false
	}
	if err := s.validator.Validate(base.Type, msg); err != nil {
		return protocol.NewResult("", false, protocol.ErrProtoBadRequest, err.Error()), false
	}

	switch base.Type {
	case protocol.TypeCmd:
		var m protocol.CmdMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewResult("", false, protocol.ErrProtoBadRequest, err.Error()), false
		}
		return s.handleCmd(sessionID, m)
	case protocol.TypeHistory:
		var m protocol.HistoryMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewResult("", false, protocol.ErrProtoBadRequest, err.Error()), false
		}
		return s.handleHistory(m)
	case protocol.TypeDelegate:
		var m protocol.DelegateMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewResult("", false, protocol.ErrProtoBadRequest, err.Error()), false
		}
		return s.handleDelegate(m)
	}
	return protocol.NewResult("", false, protocol.ErrProtoBadRequest, "unexpected "+base.Type), false
}

func (s *Server) handleCmd(sessionID string, m protocol.CmdMsg) (protocol.ResultMsg, bool) {
	cmd, err := actions.Unmarshal(m.Action, m.Args)
	if err != nil {
		return protocol.NewResult(m.ReqID, false, protocol.ErrProtoBadRequest, err.Error()), false
	}
	if cmd.Kind().Debug() && !s.opts.AllowDebug {
		return protocol.NewResult(m.ReqID, false, protocol.ErrNoPermission, "debug commands are disabled"), false
	}
	var r game.ActionResult
	var turn int
	s.Do(func(e *game.Engine) {
		r = e.PlayerActions(false).Execute(cmd)
		turn = e.GameState().Turn
	})
	if s.opts.Audit != nil {
		err := s.opts.Audit.WriteAudit(persistlog.AuditEntry{
			Time:     time.Now().UTC(),
			Session:  sessionID,
			Turn:     turn,
			Action:   m.Action,
			Args:     m.Args,
			Accepted: r.Success,
			Code:     r.Code,
			Message:  r.ErrorMessage,
		})
		if err != nil {
			s.log.Warn("audit write failed", "err", err)
		}
	}
	return protocol.NewResult(m.ReqID, r.Success, r.Code, r.ErrorMessage), r.Success
}

func (s *Server) handleHistory(m protocol.HistoryMsg) (protocol.ResultMsg, bool) {
	var moved bool
	s.Do(func(e *game.Engine) {
		switch m.Op {
		case protocol.HistoryUndo:
			moved = e.Undo()
		case protocol.HistoryRedo:
			moved = e.Redo()
		case protocol.HistoryJumpPast:
			moved = e.JumpToPast(m.Index)
		case protocol.HistoryJumpFuture:
			moved = e.JumpToFuture(m.Index)
		case protocol.HistoryClear:
			moved = e.ClearHistory()
		case protocol.HistoryCompact:
			moved = e.CompactHistory()
		}
	})
	if !moved {
		return protocol.NewResult(m.ReqID, false, protocol.ErrConflict, "nothing to "+m.Op), false
	}
	return protocol.NewResult(m.ReqID, true, "", ""), true
}

func (s *Server) handleDelegate(m protocol.DelegateMsg) (protocol.ResultMsg, bool) {
	var played int
	var err error
	s.Do(func(e *game.Engine) {
		played, err = delegate(e, m.Intellect, m.Turns)
	})
	if err != nil {
		s.log.Error("delegation failed", "intellect", m.Intellect, "turns", played, "err", err)
		return protocol.NewResult(m.ReqID, false, protocol.ErrInternal, err.Error()), played > 0
	}
	res := protocol.NewResult(m.ReqID, true, "", "")
	res.TurnsPlayed = played
	return res, true
}

func delegate(e *game.Engine, name string, turns int) (played int, err error) {
	defer invariant.Recover(&err)
	return e.DelegateTurnsToAIPlayer(name, turns)
}

func stateOf(e *game.Engine) protocol.StateMsg {
	h := e.History()
	past, present, _ := h.Labels()
	gs, err := json.Marshal(e.GameState())
	invariant.NoError(err)
	ai, err := json.Marshal(e.AIState())
	invariant.NoError(err)
	return protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Turn:            e.GameState().Turn,
		Digest:          e.GameState().Digest(),
		GameOver:        e.IsGameOver(),
		GameWon:         e.IsGameWon(),
		CanUndo:         h.CanUndo(),
		CanRedo:         h.CanRedo(),
		Labels:          append(past, present),
		Game:            gs,
		AI:              ai,
	}
}

func (s *Server) broadcastState() {
	var st protocol.StateMsg
	s.Do(func(e *game.Engine) { st = stateOf(e) })
	b, err := json.Marshal(st)
	if err != nil {
		return
	}
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	for id, out := range s.sessions {
		select {
		case out <- b:
		default:
			s.log.Warn("state dropped", "session", id)
		}
	}
}

func (s *Server) send(sessionID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	if out, ok := s.sessions[sessionID]; ok {
		select {
		case out <- b:
		default:
			s.log.Warn("result dropped", "session", sessionID)
		}
	}
}

func (s *Server) leave(id string) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	delete(s.sessions, id)
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
