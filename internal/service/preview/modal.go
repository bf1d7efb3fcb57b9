package preview

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/thumbpreview/internal/modal"
	"github.com/sharetube/thumbpreview/internal/repository/session"
)

// applyModal runs op on the session overlay and persists the result, rolling
// the overlay back if the write fails. ls.mu must be held.
func (s *service) applyModal(ctx context.Context, ls *liveSession, op func(*modal.Controller) bool) error {
	wasOpen := ls.modal.IsOpen()
	if !op(ls.modal) {
		return nil
	}

	if err := s.sessionRepo.UpdateSessionModalOpen(ctx, &session.UpdateSessionModalOpenParams{
		SessionId: ls.id,
		ModalOpen: ls.modal.IsOpen(),
	}); err != nil {
		if wasOpen {
			ls.modal.Open()
		} else {
			ls.modal.Close()
		}
		return fmt.Errorf("failed to update session modal: %w", err)
	}

	return nil
}

type ToggleModalParams struct {
	SessionId string
}

func (s *service) ToggleModal(ctx context.Context, params *ToggleModalParams) (StateResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
	); err != nil {
		return StateResponse{}, err
	}

	ls, err := s.getLiveSession(params.SessionId)
	if err != nil {
		return StateResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	// the play trigger only exists while there is a video, closing always works
	if !ls.modal.IsOpen() && ls.videoId == "" {
		return StateResponse{}, ErrNoVideo
	}

	if err := s.applyModal(ctx, ls, func(c *modal.Controller) bool {
		c.Toggle()
		return true
	}); err != nil {
		return StateResponse{}, err
	}

	return StateResponse{State: ls.state()}, nil
}

type OpenModalParams struct {
	SessionId string
}

func (s *service) OpenModal(ctx context.Context, params *OpenModalParams) (StateResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
	); err != nil {
		return StateResponse{}, err
	}

	ls, err := s.getLiveSession(params.SessionId)
	if err != nil {
		return StateResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.videoId == "" {
		return StateResponse{}, ErrNoVideo
	}

	if err := s.applyModal(ctx, ls, (*modal.Controller).Open); err != nil {
		return StateResponse{}, err
	}

	return StateResponse{State: ls.state()}, nil
}

type CloseModalParams struct {
	SessionId string
	Reason    string
}

func (s *service) CloseModal(ctx context.Context, params *CloseModalParams) (StateResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
		validation.Field(&params.Reason, CloseReasonRule...),
	); err != nil {
		return StateResponse{}, err
	}

	ls, err := s.getLiveSession(params.SessionId)
	if err != nil {
		return StateResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	var op func(*modal.Controller) bool
	switch params.Reason {
	case CloseReasonOverlay:
		op = (*modal.Controller).OverlayClick
	case CloseReasonEscape:
		op = (*modal.Controller).Escape
	default:
		op = (*modal.Controller).Close
	}

	if err := s.applyModal(ctx, ls, op); err != nil {
		return StateResponse{}, err
	}

	return StateResponse{State: ls.state()}, nil
}
