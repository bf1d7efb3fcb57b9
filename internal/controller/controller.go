package controller

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sharetube/thumbpreview/internal/modal"
	"github.com/sharetube/thumbpreview/internal/service/preview"
	"github.com/sharetube/thumbpreview/pkg/validator"
	"github.com/sharetube/thumbpreview/pkg/wsrouter"
)

var ErrValidationError = errors.New("validation error")

type iPreviewService interface {
	Preview(*string) preview.Preview
	ModalOptions() modal.Options
	CreateSession(context.Context) (preview.CreateSessionResponse, error)
	ResumeSession(context.Context, *preview.ResumeSessionParams) (preview.ResumeSessionResponse, error)
	ConnectSession(context.Context, *preview.ConnectSessionParams) error
	DisconnectSession(context.Context, *preview.DisconnectSessionParams) error
	EndSession(context.Context, *preview.EndSessionParams) error
	GetState(context.Context, string) (preview.StateResponse, error)
	UpdateInput(context.Context, *preview.UpdateInputParams) (preview.StateResponse, error)
	ToggleModal(context.Context, *preview.ToggleModalParams) (preview.StateResponse, error)
	OpenModal(context.Context, *preview.OpenModalParams) (preview.StateResponse, error)
	CloseModal(context.Context, *preview.CloseModalParams) (preview.StateResponse, error)
	CopyEmbedURL(context.Context, *preview.CopyEmbedURLParams) (preview.CopyEmbedURLResponse, error)
	ToggleFullscreen(context.Context, *preview.ToggleFullscreenParams) (preview.ToggleFullscreenResponse, error)
	FullscreenFailed(context.Context, *preview.FullscreenFailedParams) (preview.StateResponse, error)
	FullscreenExited(context.Context, *preview.FullscreenExitedParams) (preview.StateResponse, error)
}

type controller struct {
	previewService iPreviewService
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	logger         *slog.Logger
	wsmux          *wsrouter.WSRouter
	templates      *template.Template
	// gorilla allows one concurrent writer per connection
	connLocks sync.Map
}

func NewController(previewService iPreviewService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		previewService: previewService,
		validate:       validator.NewValidator(),
		logger:         logger,
		templates:      mustParseTemplates(),
	}
	c.wsmux = c.getWSRouter()

	return c
}
