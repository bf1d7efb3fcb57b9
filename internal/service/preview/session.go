package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/thumbpreview/internal/repository/connection"
	"github.com/sharetube/thumbpreview/internal/repository/session"
)

type CreateSessionResponse struct {
	SessionId    string
	SessionToken string
	State        State
}

func (s *service) CreateSession(ctx context.Context) (CreateSessionResponse, error) {
	sessionId := uuid.NewString()

	if err := s.sessionRepo.SetSession(ctx, &session.SetSessionParams{
		SessionId: sessionId,
	}); err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to set session: %w", err)
	}

	sessionToken, err := s.generateJWT(sessionId)
	if err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	ls := s.putLiveSession(s.newLiveSession(sessionId, false))

	ls.mu.Lock()
	defer ls.mu.Unlock()

	return CreateSessionResponse{
		SessionId:    sessionId,
		SessionToken: sessionToken,
		State:        ls.state(),
	}, nil
}

type ResumeSessionParams struct {
	SessionToken string
}

type ResumeSessionResponse struct {
	SessionId    string
	SessionToken string
	State        State
}

func (s *service) ResumeSession(ctx context.Context, params *ResumeSessionParams) (ResumeSessionResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionToken, SessionTokenRule...),
	); err != nil {
		return ResumeSessionResponse{}, err
	}

	claims, err := s.parseJWT(params.SessionToken)
	if err != nil {
		return ResumeSessionResponse{}, fmt.Errorf("failed to parse session token: %w", err)
	}

	ls, err := s.loadLiveSession(ctx, claims.SessionId)
	if err != nil {
		return ResumeSessionResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	return ResumeSessionResponse{
		SessionId:    claims.SessionId,
		SessionToken: params.SessionToken,
		State:        ls.state(),
	}, nil
}

type ConnectSessionParams struct {
	Conn      *websocket.Conn
	SessionId string
	// OnChange receives state changes that happen outside a request, such as
	// the copy acknowledgement expiring.
	OnChange func(State)
}

// ConnectSession binds conn to the session. A session whose previous socket
// finished tearing down after it was resumed is restored from the store again.
func (s *service) ConnectSession(ctx context.Context, params *ConnectSessionParams) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	ls, err := s.loadLiveSession(ctx, params.SessionId)
	if err != nil {
		return err
	}

	if err := s.connRepo.Add(params.Conn, params.SessionId); err != nil {
		if errors.Is(err, connection.ErrAlreadyExists) {
			return ErrAlreadyConnected
		}
		return fmt.Errorf("failed to add conn: %w", err)
	}

	ls.mu.Lock()
	ls.onChange = params.OnChange
	ls.mu.Unlock()

	s.logger.DebugContext(ctx, "session connected", "session_id", params.SessionId)
	return nil
}

type DisconnectSessionParams struct {
	SessionId string
	// Conn limits the teardown to the session owned by this connection. Nil
	// disconnects whatever is attached.
	Conn *websocket.Conn
}

// DisconnectSession tears down the in-process half of a session. The stored
// snapshot outlives it so the session can be resumed until it expires.
func (s *service) DisconnectSession(ctx context.Context, params *DisconnectSessionParams) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if params.Conn != nil {
		owner, err := s.connRepo.GetConn(params.SessionId)
		if err == nil && owner != params.Conn {
			s.logger.DebugContext(ctx, "session owned by another conn", "session_id", params.SessionId)
			return nil
		}
	}

	ls := s.dropLiveSession(params.SessionId)
	if ls == nil {
		return ErrSessionNotFound
	}

	ls.mu.Lock()
	ls.onChange = nil
	ls.mu.Unlock()

	ls.ack.Stop()

	if _, err := s.connRepo.RemoveBySessionId(params.SessionId); err != nil && !errors.Is(err, connection.ErrNotFound) {
		return fmt.Errorf("failed to remove conn: %w", err)
	}

	// the resume window starts at disconnect
	if err := s.sessionRepo.ExpireSession(ctx, &session.ExpireSessionParams{
		SessionId: params.SessionId,
		ExpireAt:  time.Now().Add(s.sessionExp),
	}); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		return fmt.Errorf("failed to expire session: %w", err)
	}

	s.logger.DebugContext(ctx, "session disconnected", "session_id", params.SessionId)
	return nil
}

type EndSessionParams struct {
	SessionId string
}

// EndSession disconnects the session and forgets it for good.
func (s *service) EndSession(ctx context.Context, params *EndSessionParams) error {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
	); err != nil {
		return err
	}

	if err := s.DisconnectSession(ctx, &DisconnectSessionParams{
		SessionId: params.SessionId,
	}); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	if err := s.sessionRepo.RemoveSession(ctx, params.SessionId); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}

// loadLiveSession returns the live session, restoring it from the stored
// snapshot when no socket holds it.
func (s *service) loadLiveSession(ctx context.Context, sessionId string) (*liveSession, error) {
	if ls, err := s.getLiveSession(sessionId); err == nil {
		return ls, nil
	}

	stored, err := s.sessionRepo.GetSession(ctx, sessionId)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	restored := s.newLiveSession(sessionId, stored.ModalOpen)
	restored.input = stored.Input
	restored.hasInput = stored.HasInput
	restored.videoId = stored.VideoId

	return s.putLiveSession(restored), nil
}

func (s *service) GetState(ctx context.Context, sessionId string) (StateResponse, error) {
	ls, err := s.getLiveSession(sessionId)
	if err != nil {
		return StateResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	return StateResponse{State: ls.state()}, nil
}
