package preview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/thumbpreview/internal/modal"
	"github.com/sharetube/thumbpreview/internal/repository/session"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrAlreadyConnected = errors.New("session already connected")
	ErrNoVideo          = errors.New("no video id")
)

type iSessionRepo interface {
	SetSession(context.Context, *session.SetSessionParams) error
	GetSession(context.Context, string) (session.Session, error)
	UpdateSessionInput(context.Context, *session.UpdateSessionInputParams) error
	UpdateSessionModalOpen(context.Context, *session.UpdateSessionModalOpenParams) error
	ExpireSession(context.Context, *session.ExpireSessionParams) error
	RemoveSession(context.Context, string) error
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveBySessionId(string) (*websocket.Conn, error)
	GetConn(string) (*websocket.Conn, error)
}

type Config struct {
	Secret       string
	SessionExp   time.Duration
	CopyAckDelay time.Duration
	Modal        modal.Options
}

type service struct {
	sessionRepo iSessionRepo
	connRepo    iConnRepo
	extractor   ytthumb.Extractor
	logger      *slog.Logger
	secret      []byte
	sessionExp  time.Duration
	ackDelay    time.Duration
	modalOpts   modal.Options

	mu       sync.Mutex
	sessions map[string]*liveSession

	// serializes attaching and detaching sockets
	connMu sync.Mutex
}

func New(sessionRepo iSessionRepo, connRepo iConnRepo, extractor ytthumb.Extractor, logger *slog.Logger, cfg *Config) *service {
	return &service{
		sessionRepo: sessionRepo,
		connRepo:    connRepo,
		extractor:   extractor,
		logger:      logger,
		secret:      []byte(cfg.Secret),
		sessionExp:  cfg.SessionExp,
		ackDelay:    cfg.CopyAckDelay,
		modalOpts:   cfg.Modal,
		sessions:    make(map[string]*liveSession),
	}
}

func (s *service) ModalOptions() modal.Options {
	return s.modalOpts
}
