package idx

import (
	"sync"
)

// MemoryRegistry is a concurrency-safe set of issued codes.
type MemoryRegistry struct {
	mu    sync.Mutex
	codes map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{codes: make(map[string]struct{})}
}

func (r *MemoryRegistry) Has(code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.has(code)
}

func (r *MemoryRegistry) has(code string) (bool, error) {
	_, ok := r.codes[code]
	return ok, nil
}

// Insert adds code if absent and reports whether it did.
func (r *MemoryRegistry) Insert(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codes[code]; ok {
		return false
	}
	r.codes[code] = struct{}{}
	return true
}

// Remove frees code for reuse.
func (r *MemoryRegistry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, code)
}

func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

// Claim generates a code with g and records it in one critical section, so
// concurrent callers can never be handed the same code.
func (r *MemoryRegistry) Claim(g Generator) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := g.Generate(RegistryFunc(r.has))
	if err != nil {
		return "", err
	}
	r.codes[code] = struct{}{}
	return code, nil
}
