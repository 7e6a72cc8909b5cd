package orchestrator

import "sync"

// HistorySize is the number of turns kept per session.
const HistorySize = 3

// Turn is one answered query.
type Turn struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

// Session holds the most recent turns of one conversation.
type Session struct {
	mu    sync.Mutex
	turns [HistorySize]Turn
	next  int
	count int
}

func NewSession() *Session {
	return &Session{}
}

// Append records a turn, evicting the oldest once full.
func (s *Session) Append(query, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[s.next] = Turn{Query: query, Response: response}
	s.next = (s.next + 1) % HistorySize
	if s.count < HistorySize {
		s.count++
	}
}

// Turns returns the kept turns, oldest first.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, 0, s.count)
	start := (s.next - s.count + HistorySize) % HistorySize
	for i := 0; i < s.count; i++ {
		out = append(out, s.turns[(start+i)%HistorySize])
	}
	return out
}

// Reset drops all turns.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = [HistorySize]Turn{}
	s.next, s.count = 0, 0
}

// SessionStore keys sessions by user.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the session for key, creating it on first use.
func (s *SessionStore) Get(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = NewSession()
		s.sessions[key] = sess
	}
	return sess
}

// Delete forgets the session for key.
func (s *SessionStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
