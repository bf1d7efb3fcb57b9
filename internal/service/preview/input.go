package preview

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/thumbpreview/internal/repository/session"
)

// Preview derives the gallery and embed urls from raw input without touching
// any session. A nil input yields an empty preview with a null video id.
func (s *service) Preview(input *string) Preview {
	if input == nil {
		return Preview{}
	}

	return newPreview(s.extractor.Extract(*input))
}

type UpdateInputParams struct {
	SessionId string
	Input     string
}

func (s *service) UpdateInput(ctx context.Context, params *UpdateInputParams) (StateResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
		validation.Field(&params.Input, InputRule...),
	); err != nil {
		return StateResponse{}, err
	}

	ls, err := s.getLiveSession(params.SessionId)
	if err != nil {
		return StateResponse{}, err
	}

	videoId := s.extractor.Extract(params.Input)

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := s.sessionRepo.UpdateSessionInput(ctx, &session.UpdateSessionInputParams{
		SessionId: params.SessionId,
		Input:     params.Input,
		VideoId:   videoId,
	}); err != nil {
		return StateResponse{}, fmt.Errorf("failed to update session input: %w", err)
	}

	ls.input = params.Input
	ls.hasInput = true
	ls.videoId = videoId
	// the image that was fullscreen belongs to the previous id
	ls.fullscreen = ""

	return StateResponse{State: ls.state()}, nil
}
