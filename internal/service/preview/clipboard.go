package preview

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

type CopyEmbedURLParams struct {
	SessionId string
}

type CopyEmbedURLResponse struct {
	// Text is what the client writes to the clipboard.
	Text  string
	State State
}

func (s *service) CopyEmbedURL(ctx context.Context, params *CopyEmbedURLParams) (CopyEmbedURLResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.SessionId, SessionIdRule...),
	); err != nil {
		return CopyEmbedURLResponse{}, err
	}

	ls, err := s.getLiveSession(params.SessionId)
	if err != nil {
		return CopyEmbedURLResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.videoId == "" {
		return CopyEmbedURLResponse{}, ErrNoVideo
	}

	ls.ack.Ack()

	return CopyEmbedURLResponse{
		Text:  ytthumb.EmbedURL(ls.videoId),
		State: ls.state(),
	}, nil
}
