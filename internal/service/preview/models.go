package preview

import "github.com/sharetube/thumbpreview/pkg/ytthumb"

// Preview is everything derived from a single video id.
type Preview struct {
	// nil when there was no input at all
	VideoId    *string             `json:"video_id"`
	Thumbnails []ytthumb.Thumbnail `json:"thumbnails"`
	EmbedURL   string              `json:"embed_url,omitempty"`
	PlayerURL  string              `json:"player_url,omitempty"`
}

func newPreview(videoId string) Preview {
	p := Preview{
		VideoId:    &videoId,
		Thumbnails: ytthumb.Gallery(videoId),
	}
	if videoId != "" {
		p.EmbedURL = ytthumb.EmbedURL(videoId)
		p.PlayerURL = ytthumb.PlayerURL(videoId)
	}

	return p
}

type State struct {
	SessionId string `json:"session_id"`
	Input     string `json:"input"`
	// nil until the first input event
	VideoId           *string             `json:"video_id"`
	ModalOpen         bool                `json:"modal_open"`
	Copied            bool                `json:"copied"`
	FullscreenVariant string              `json:"fullscreen_variant"`
	Gallery           []ytthumb.Thumbnail `json:"gallery"`
	EmbedURL          string              `json:"embed_url,omitempty"`
	PlayerURL         string              `json:"player_url,omitempty"`
	CanPlay           bool                `json:"can_play"`
	CanCopy           bool                `json:"can_copy"`
}

type StateResponse struct {
	State State
}

const (
	CloseReasonButton  = "button"
	CloseReasonOverlay = "overlay"
	CloseReasonEscape  = "escape"
)

type FullscreenAction string

const (
	FullscreenRequest FullscreenAction = "request"
	FullscreenExit    FullscreenAction = "exit"
)
