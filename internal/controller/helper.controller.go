package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/thumbpreview/internal/service/preview"
	"github.com/sharetube/thumbpreview/pkg/validator"
	"github.com/sharetube/thumbpreview/pkg/wsrouter"
)

const writeWait = 5 * time.Second

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// generateTimeBasedId returns a uuid v7 so ids sort by creation time.
func (c *controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

var errConnReleased = errors.New("connection released")

// trackConn must run right after the upgrade, before anything writes to conn.
func (c *controller) trackConn(conn *websocket.Conn) {
	c.connLocks.Store(conn, &sync.Mutex{})
}

func (c *controller) untrackConn(conn *websocket.Conn) {
	c.connLocks.Delete(conn)
}

// connLock never creates a lock, so late writers cannot resurrect a released
// conn.
func (c *controller) connLock(conn *websocket.Conn) (*sync.Mutex, bool) {
	mu, ok := c.connLocks.Load(conn)
	if !ok {
		return nil, false
	}

	return mu.(*sync.Mutex), true
}

func (c *controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) error {
	mu, ok := c.connLock(conn)
	if !ok {
		return errConnReleased
	}
	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(output); err != nil {
		c.logger.InfoContext(ctx, "failed to write to conn", "error", err)
		return err
	}

	return nil
}

func (c *controller) closeConn(ctx context.Context, conn *websocket.Conn, code int, text string) {
	mu, ok := c.connLock(conn)
	if !ok {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	if err := conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait)); err != nil {
		c.logger.DebugContext(ctx, "failed to write close message", "error", err)
	}
}

func (c *controller) writeState(ctx context.Context, conn *websocket.Conn, state *preview.State) error {
	view, err := c.renderView(c.stateView(state))
	if err != nil {
		return fmt.Errorf("failed to render view: %w", err)
	}

	return c.writeToConn(ctx, conn, &Output{
		Type: "STATE_UPDATED",
		Payload: map[string]any{
			"state": state,
			"html":  view,
		},
	})
}

func (c *controller) writeError(ctx context.Context, conn *websocket.Conn, err error) {
	c.logger.InfoContext(ctx, "handler error", "error", err)

	message := err.Error()
	if !isClientError(err) {
		message = "internal error"
	}

	c.writeToConn(ctx, conn, &Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message": message,
		},
	})
}

func isClientError(err error) bool {
	for _, target := range []error{
		ErrValidationError,
		preview.ErrNoVideo,
		preview.ErrSessionNotFound,
		preview.ErrAlreadyConnected,
		preview.ErrInvalidToken,
		wsrouter.ErrUnknownMessageType,
		wsrouter.ErrInvalidPayload,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	var validationErrors interface{ Filter() error }
	return errors.As(err, &validationErrors)
}

func (c *controller) validateInput(input any) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %w", ErrValidationError, validator.Error(validationErrors))
	}

	return nil
}
