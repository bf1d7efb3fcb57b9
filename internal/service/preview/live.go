package preview

import (
	"sync"

	"github.com/sharetube/thumbpreview/internal/clipboard"
	"github.com/sharetube/thumbpreview/internal/modal"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

// liveSession is the in-process half of a session: the parts that cannot be
// persisted (timers, the overlay instance, the connection callback).
type liveSession struct {
	mu         sync.Mutex
	id         string
	input      string
	hasInput   bool
	videoId    string
	modal      *modal.Controller
	ack        *clipboard.Acknowledger
	fullscreen ytthumb.Variant
	onChange   func(State)
}

func (s *service) newLiveSession(id string, modalOpen bool) *liveSession {
	ls := &liveSession{
		id:    id,
		modal: modal.New(s.modalOpts),
	}
	if modalOpen {
		ls.modal.Open()
	}
	ls.ack = clipboard.NewAcknowledger(s.ackDelay, ls.notify)

	return ls
}

// state must be called with ls.mu held.
func (ls *liveSession) state() State {
	st := State{
		SessionId:         ls.id,
		Input:             ls.input,
		ModalOpen:         ls.modal.IsOpen(),
		Copied:            ls.ack.Copied(),
		FullscreenVariant: string(ls.fullscreen),
	}

	if ls.hasInput {
		videoId := ls.videoId
		st.VideoId = &videoId
	}

	if ls.videoId != "" {
		p := newPreview(ls.videoId)
		st.Gallery = p.Thumbnails
		st.EmbedURL = p.EmbedURL
		st.PlayerURL = p.PlayerURL
		st.CanPlay = true
		st.CanCopy = true
	}

	return st
}

func (ls *liveSession) notify() {
	ls.mu.Lock()
	st := ls.state()
	onChange := ls.onChange
	ls.mu.Unlock()

	if onChange != nil {
		onChange(st)
	}
}

func (s *service) getLiveSession(sessionId string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.sessions[sessionId]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return ls, nil
}

func (s *service) putLiveSession(ls *liveSession) *liveSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[ls.id]; ok {
		ls.ack.Stop()
		return existing
	}

	s.sessions[ls.id] = ls
	return ls
}

func (s *service) dropLiveSession(sessionId string) *liveSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.sessions[sessionId]
	if !ok {
		return nil
	}

	delete(s.sessions, sessionId)
	return ls
}
