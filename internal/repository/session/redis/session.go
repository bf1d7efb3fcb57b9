package redis

import (
	"context"
	"fmt"

	"github.com/sharetube/thumbpreview/internal/repository/session"
)

func (r repo) getSessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (r repo) SetSession(ctx context.Context, params *session.SetSessionParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	sessionKey := r.getSessionKey(params.SessionId)

	exists, err := r.rc.Exists(ctx, sessionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check if session exists: %w", err)
	}

	if exists > 0 {
		r.logger.DebugContext(ctx, "returned", "error", session.ErrSessionAlreadyExists)
		return session.ErrSessionAlreadyExists
	}

	s := session.Session{
		Input:     params.Input,
		HasInput:  params.HasInput,
		VideoId:   params.VideoId,
		ModalOpen: params.ModalOpen,
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, sessionKey, s)
	pipe.Expire(ctx, sessionKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (r repo) GetSession(ctx context.Context, sessionId string) (session.Session, error) {
	r.logger.DebugContext(ctx, "called", "session_id", sessionId)
	sessionKey := r.getSessionKey(sessionId)

	res := r.rc.HGetAll(ctx, sessionKey)
	if err := res.Err(); err != nil {
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	if len(res.Val()) == 0 {
		r.logger.DebugContext(ctx, "returned", "error", session.ErrSessionNotFound)
		return session.Session{}, session.ErrSessionNotFound
	}

	var s session.Session
	if err := res.Scan(&s); err != nil {
		return session.Session{}, fmt.Errorf("failed to scan session: %w", err)
	}

	r.rc.Expire(ctx, sessionKey, r.expireDuration)

	return s, nil
}

func (r repo) checkSessionExists(ctx context.Context, sessionKey string) error {
	exists, err := r.rc.Exists(ctx, sessionKey).Result()
	if err != nil {
		return err
	}

	if exists == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}

func (r repo) UpdateSessionInput(ctx context.Context, params *session.UpdateSessionInputParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	sessionKey := r.getSessionKey(params.SessionId)

	if err := r.checkSessionExists(ctx, sessionKey); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, sessionKey,
		"input", params.Input,
		"has_input", true,
		"video_id", params.VideoId,
	)
	pipe.Expire(ctx, sessionKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to update session input: %w", err)
	}

	return nil
}

func (r repo) UpdateSessionModalOpen(ctx context.Context, params *session.UpdateSessionModalOpenParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	sessionKey := r.getSessionKey(params.SessionId)

	if err := r.checkSessionExists(ctx, sessionKey); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, sessionKey, "modal_open", params.ModalOpen)
	pipe.Expire(ctx, sessionKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to update session modal: %w", err)
	}

	return nil
}

func (r repo) ExpireSession(ctx context.Context, params *session.ExpireSessionParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	ok, err := r.rc.ExpireAt(ctx, r.getSessionKey(params.SessionId), params.ExpireAt).Result()
	if err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}

	if !ok {
		return session.ErrSessionNotFound
	}

	return nil
}

func (r repo) RemoveSession(ctx context.Context, sessionId string) error {
	r.logger.DebugContext(ctx, "called", "session_id", sessionId)
	res, err := r.rc.Del(ctx, r.getSessionKey(sessionId)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	if res == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}
