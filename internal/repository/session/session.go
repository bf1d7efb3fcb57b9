package session

import "time"

type Session struct {
	Input     string `redis:"input" json:"input"`
	HasInput  bool   `redis:"has_input" json:"has_input"`
	VideoId   string `redis:"video_id" json:"video_id"`
	ModalOpen bool   `redis:"modal_open" json:"modal_open"`
}

type SetSessionParams struct {
	SessionId string `json:"session_id"`
	Input     string `json:"input"`
	HasInput  bool   `json:"has_input"`
	VideoId   string `json:"video_id"`
	ModalOpen bool   `json:"modal_open"`
}

type UpdateSessionInputParams struct {
	SessionId string `json:"session_id"`
	Input     string `json:"input"`
	VideoId   string `json:"video_id"`
}

type UpdateSessionModalOpenParams struct {
	SessionId string `json:"session_id"`
	ModalOpen bool   `json:"modal_open"`
}

type ExpireSessionParams struct {
	SessionId string
	ExpireAt  time.Time
}
