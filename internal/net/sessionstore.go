package net

// SessionStore tracks live sessions by ID. Accessed only from the tick loop
// goroutine, so no locking is needed.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (st *SessionStore) Add(sess *Session) {
	st.sessions[sess.ID] = sess
}

func (st *SessionStore) Remove(id uint64) {
	delete(st.sessions, id)
}

func (st *SessionStore) Get(id uint64) *Session {
	return st.sessions[id]
}

// Raw exposes the underlying map for range iteration in the tick loop.
func (st *SessionStore) Raw() map[uint64]*Session {
	return st.sessions
}

func (st *SessionStore) ForEach(fn func(*Session)) {
	for _, sess := range st.sessions {
		fn(sess)
	}
}

func (st *SessionStore) Count() int {
	return len(st.sessions)
}
