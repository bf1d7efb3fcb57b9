package inmemory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sharetube/thumbpreview/internal/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
		logger:   logger,
	}
}

func (r *repo) Add(conn *websocket.Conn, sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("called", "session_id", sessionId)
	if _, ok := r.connList[conn]; ok {
		return connection.ErrAlreadyExists
	}

	if _, ok := r.idList[sessionId]; ok {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = sessionId
	r.idList[sessionId] = conn

	return nil
}

func (r *repo) RemoveBySessionId(sessionId string) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[sessionId]
	if !ok {
		r.logger.Debug("returned", "session_id", sessionId, "error", connection.ErrNotFound)
		return nil, connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, sessionId)

	return conn, nil
}

func (r *repo) GetConn(sessionId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[sessionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
