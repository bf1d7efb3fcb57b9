package preview

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

type ToggleFullscreenParams struct {
	SessionId string
	Variant   string
}

type ToggleFullscreenResponse struct {
	Action  FullscreenAction
	Variant string
	State   State
}

// ToggleFullscreen mirrors a click on a thumbnail: exit if anything is
// fullscreen, otherwise ask the client to present the clicked image.
func (s *service) ToggleFullscreen(ctx context.Context, params *ToggleFullscreenParams) (ToggleFullscreenResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
		validation.Field(&params.Variant, VariantRule...),
	); err != nil {
		return ToggleFullscreenResponse{}, err
	}

	ls, err := s.getLiveSession(params.SessionId)
	if err != nil {
		return ToggleFullscreenResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.fullscreen != "" {
		prev := ls.fullscreen
		ls.fullscreen = ""
		return ToggleFullscreenResponse{
			Action:  FullscreenExit,
			Variant: string(prev),
			State:   ls.state(),
		}, nil
	}

	if ls.videoId == "" {
		return ToggleFullscreenResponse{}, ErrNoVideo
	}

	ls.fullscreen = ytthumb.Variant(params.Variant)

	return ToggleFullscreenResponse{
		Action:  FullscreenRequest,
		Variant: params.Variant,
		State:   ls.state(),
	}, nil
}

type FullscreenFailedParams struct {
	SessionId string
	Variant   string
	Reason    string
}

// FullscreenFailed records a rejected fullscreen request. The failure is only
// logged; the user sees the image stay where it was.
func (s *service) FullscreenFailed(ctx context.Context, params *FullscreenFailedParams) (StateResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
	); err != nil {
		return StateResponse{}, err
	}

	ls, err := s.getLiveSession(params.SessionId)
	if err != nil {
		return StateResponse{}, err
	}

	s.logger.WarnContext(ctx, "error attempting to enable fullscreen",
		"session_id", params.SessionId,
		"variant", params.Variant,
		"reason", params.Reason,
	)

	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.fullscreen = ""

	return StateResponse{State: ls.state()}, nil
}

type FullscreenExitedParams struct {
	SessionId string
}

func (s *service) FullscreenExited(ctx context.Context, params *FullscreenExitedParams) (StateResponse, error) {
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

	ls.fullscreen = ""

	return StateResponse{State: ls.state()}, nil
}
