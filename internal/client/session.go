package client

import (
	"sync"

	"bubblechat/internal/models"
	"bubblechat/internal/recent"
	"bubblechat/internal/utils"
)

// Session is the device-local state of the widget: the active room, the live
// message window for it, the resolved-avatar cache and the recent-rooms
// list. It is constructed once at startup and handed to the presentation
// layer; nothing here is global.
//
// The mutex exists because feed deliveries arrive on the subscription
// goroutine while the UI mutates the active room from event callbacks.
type Session struct {
	Recent *recent.List
	Log    *utils.RemoteLogger

	mu       sync.Mutex
	chatID   string
	messages []models.ChatMessage // oldest first, at most models.MessageWindow
	avatars  map[string]string    // room id -> chatAvatarSrc
	feed     *liveFeed
}

// NewSession creates a new Session.
func NewSession(rec *recent.List, logger *utils.RemoteLogger) *Session {
	return &Session{
		Recent:  rec,
		Log:     logger,
		avatars: make(map[string]string),
	}
}

// ActiveRoom returns the currently open room id, empty when none is open.
func (s *Session) ActiveRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// Window returns a copy of the current message window, oldest first.
func (s *Session) Window() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) cachedAvatar(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.avatars[id]
	return src, ok
}

func (s *Session) cacheAvatar(id, src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatars[id] = src
}
