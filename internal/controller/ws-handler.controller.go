package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sharetube/thumbpreview/internal/service/preview"
)

type EmptyInput struct{}

func (c *controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

func (c *controller) handleGetState(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	getStateResp, err := c.previewService.GetState(ctx, c.getSessionIdFromCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}

	return c.writeState(ctx, conn, &getStateResp.State)
}

type UpdateInputInput struct {
	Input string `json:"input" validate:"max=2048"`
}

func (c *controller) handleUpdateInput(ctx context.Context, conn *websocket.Conn, input UpdateInputInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	updateInputResp, err := c.previewService.UpdateInput(ctx, &preview.UpdateInputParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		Input:     input.Input,
	})
	if err != nil {
		return fmt.Errorf("failed to update input: %w", err)
	}

	return c.writeState(ctx, conn, &updateInputResp.State)
}

func (c *controller) handleToggleModal(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	toggleModalResp, err := c.previewService.ToggleModal(ctx, &preview.ToggleModalParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to toggle modal: %w", err)
	}

	return c.writeState(ctx, conn, &toggleModalResp.State)
}

func (c *controller) handleOpenModal(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	openModalResp, err := c.previewService.OpenModal(ctx, &preview.OpenModalParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to open modal: %w", err)
	}

	return c.writeState(ctx, conn, &openModalResp.State)
}

type CloseModalInput struct {
	Reason string `json:"reason" validate:"omitempty,oneof=button overlay escape"`
}

func (c *controller) handleCloseModal(ctx context.Context, conn *websocket.Conn, input CloseModalInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	reason := input.Reason
	if reason == "" {
		reason = preview.CloseReasonButton
	}

	closeModalResp, err := c.previewService.CloseModal(ctx, &preview.CloseModalParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		Reason:    reason,
	})
	if err != nil {
		return fmt.Errorf("failed to close modal: %w", err)
	}

	return c.writeState(ctx, conn, &closeModalResp.State)
}

func (c *controller) handleCopyEmbedURL(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	copyResp, err := c.previewService.CopyEmbedURL(ctx, &preview.CopyEmbedURLParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to copy embed url: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "CLIPBOARD_WRITE",
		Payload: map[string]any{
			"text": copyResp.Text,
		},
	}); err != nil {
		return fmt.Errorf("failed to write clipboard text: %w", err)
	}

	return c.writeState(ctx, conn, &copyResp.State)
}

type ToggleFullscreenInput struct {
	Variant string `json:"variant" validate:"required,oneof=maxresdefault sddefault hqdefault mqdefault default"`
}

func (c *controller) handleToggleFullscreen(ctx context.Context, conn *websocket.Conn, input ToggleFullscreenInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	toggleResp, err := c.previewService.ToggleFullscreen(ctx, &preview.ToggleFullscreenParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		Variant:   input.Variant,
	})
	if err != nil {
		return fmt.Errorf("failed to toggle fullscreen: %w", err)
	}

	outputType := "REQUEST_FULLSCREEN"
	if toggleResp.Action == preview.FullscreenExit {
		outputType = "EXIT_FULLSCREEN"
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: outputType,
		Payload: map[string]any{
			"variant": toggleResp.Variant,
		},
	}); err != nil {
		return fmt.Errorf("failed to write fullscreen action: %w", err)
	}

	return c.writeState(ctx, conn, &toggleResp.State)
}

type FullscreenFailedInput struct {
	Variant string `json:"variant"`
	Reason  string `json:"reason" validate:"max=512"`
}

func (c *controller) handleFullscreenFailed(ctx context.Context, conn *websocket.Conn, input FullscreenFailedInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	failedResp, err := c.previewService.FullscreenFailed(ctx, &preview.FullscreenFailedParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		Variant:   input.Variant,
		Reason:    input.Reason,
	})
	if err != nil {
		return fmt.Errorf("failed to reset fullscreen: %w", err)
	}

	return c.writeState(ctx, conn, &failedResp.State)
}

func (c *controller) handleFullscreenExited(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	exitedResp, err := c.previewService.FullscreenExited(ctx, &preview.FullscreenExitedParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to exit fullscreen: %w", err)
	}

	return c.writeState(ctx, conn, &exitedResp.State)
}

func (c *controller) handleEndSession(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	if err := c.previewService.EndSession(ctx, &preview.EndSessionParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	c.closeConn(ctx, conn, websocket.CloseNormalClosure, "session ended")
	return nil
}
