package clientstate

import "sync"

// Token identifies one fetch started with Registry.Begin.
type Token struct {
	Key string
	Gen uint64
}

// Status is the loading state of one view.
type Status struct {
	Loading bool
	Err     error
	// Gen is the generation of the latest fetch.
	Gen uint64
}

// Registry tracks the loading and error state per view key. Only the most
// recent fetch of a key may finish it; older fetches are superseded.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Status
	next    uint64
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Status)}
}

// Begin marks key as loading and returns the token of the new fetch,
// superseding any fetch already in flight for key.
func (r *Registry) Begin(key string) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.entries[key] = Status{Loading: true, Gen: r.next}
	return Token{Key: key, Gen: r.next}
}

// Finish records the outcome of a fetch. It returns false, changing
// nothing, when the token was superseded; the caller must then drop the
// response.
func (r *Registry) Finish(tok Token, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[tok.Key]
	if !ok || cur.Gen != tok.Gen {
		return false
	}
	r.entries[tok.Key] = Status{Err: err, Gen: tok.Gen}
	return true
}

// Current reports whether tok is still the latest fetch of its key.
func (r *Registry) Current(tok Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[tok.Key].Gen == tok.Gen
}

func (r *Registry) Status(key string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[key]
}
