package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/thumbpreview/internal/service/preview"
	"github.com/sharetube/thumbpreview/pkg/ctxlogger"
	"github.com/sharetube/thumbpreview/pkg/rest"
)

const (
	closeInvalidRequest   = 4000
	closeInvalidToken     = 4001
	closeSessionNotFound  = 4004
	closeAlreadyConnected = 4009
)

type sessionStartedOutput struct {
	SessionToken string        `json:"session_token"`
	State        preview.State `json:"state"`
}

func (c *controller) createSession(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	c.trackConn(conn)
	defer c.releaseConn(conn)

	ctx := r.Context()

	createSessionResp, err := c.previewService.CreateSession(ctx)
	if err != nil {
		c.failConn(ctx, conn, err)
		return
	}

	c.serveSession(ctx, conn, createSessionResp.SessionId, &sessionStartedOutput{
		SessionToken: createSessionResp.SessionToken,
		State:        createSessionResp.State,
	})
}

type resumeSessionQuery struct {
	SessionToken string `json:"session-token" validate:"required"`
}

func (c *controller) resumeSession(w http.ResponseWriter, r *http.Request) {
	query := resumeSessionQuery{
		SessionToken: r.URL.Query().Get("session-token"),
	}

	if validationErrors, ok := c.validate.Validate(query); !ok {
		c.logger.InfoContext(r.Context(), "invalid resume query", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	c.trackConn(conn)
	defer c.releaseConn(conn)

	ctx := r.Context()

	resumeSessionResp, err := c.previewService.ResumeSession(ctx, &preview.ResumeSessionParams{
		SessionToken: query.SessionToken,
	})
	if err != nil {
		c.failConn(ctx, conn, err)
		return
	}

	c.serveSession(ctx, conn, resumeSessionResp.SessionId, &sessionStartedOutput{
		SessionToken: resumeSessionResp.SessionToken,
		State:        resumeSessionResp.State,
	})
}

func (c *controller) serveSession(ctx context.Context, conn *websocket.Conn, sessionId string, started *sessionStartedOutput) {
	ctx = context.WithValue(ctx, sessionIdCtxKey, sessionId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", sessionId))

	if err := c.previewService.ConnectSession(ctx, &preview.ConnectSessionParams{
		Conn:      conn,
		SessionId: sessionId,
		OnChange: func(state preview.State) {
			if err := c.writeState(ctx, conn, &state); err != nil {
				c.logger.InfoContext(ctx, "failed to push state", "error", err)
			}
		},
	}); err != nil {
		// the session belongs to the other connection
		if !errors.Is(err, preview.ErrAlreadyConnected) {
			c.disconnect(ctx, conn, sessionId)
		}
		c.failConn(ctx, conn, err)
		return
	}
	defer c.disconnect(ctx, conn, sessionId)

	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "SESSION_STARTED",
		Payload: started,
	}); err != nil {
		return
	}

	if err := c.writeState(ctx, conn, &started.State); err != nil {
		c.logger.InfoContext(ctx, "failed to write initial state", "error", err)
		return
	}

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.logger.InfoContext(ctx, "connection closed unexpectedly", "error", err)
			return
		}
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

func (c *controller) disconnect(ctx context.Context, conn *websocket.Conn, sessionId string) {
	if err := c.previewService.DisconnectSession(ctx, &preview.DisconnectSessionParams{
		SessionId: sessionId,
		Conn:      conn,
	}); err != nil && !errors.Is(err, preview.ErrSessionNotFound) {
		c.logger.ErrorContext(ctx, "failed to disconnect session", "error", err)
	}
}

// failConn reports err to the client and closes the connection with a code
// the client can act on.
func (c *controller) failConn(ctx context.Context, conn *websocket.Conn, err error) {
	c.writeError(ctx, conn, err)

	code, text := websocket.CloseInternalServerErr, "internal error"
	switch {
	case errors.Is(err, preview.ErrInvalidToken):
		code, text = closeInvalidToken, "invalid session token"
	case errors.Is(err, preview.ErrSessionNotFound):
		code, text = closeSessionNotFound, "session not found"
	case errors.Is(err, preview.ErrAlreadyConnected):
		code, text = closeAlreadyConnected, "session already connected"
	case isClientError(err):
		code, text = closeInvalidRequest, "invalid request"
	}

	c.closeConn(ctx, conn, code, text)
}

func (c *controller) releaseConn(conn *websocket.Conn) {
	c.untrackConn(conn)
	conn.Close()
}
