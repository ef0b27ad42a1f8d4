package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// claim identifies one source asking for one final name.
type claim struct{ source, requested string }

// CollisionResolver hands out final-directory names so that two sources
// never share one. A clash gets a " - dupN" suffix. All methods are
// goroutine-safe; one resolver is shared by every job of a service.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // final path → source that owns it
	claims   map[claim]string  // (source, requested) → path handed out
	counters map[string]int    // requested path → next dup number to try
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		claims:   make(map[claim]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final path for source. A source asking again for the
// same name gets the path it was given before, dup suffix included, so
// re-optimizing a source overwrites its previous result.
func (cr *CollisionResolver) Resolve(source, requestedOutput string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := claim{source, requestedOutput}
	if p, ok := cr.claims[key]; ok {
		return p
	}

	p := cr.next(source, requestedOutput)
	cr.owners[p] = source
	cr.claims[key] = p
	return p
}

func (cr *CollisionResolver) next(source, requested string) string {
	if owner, exists := cr.owners[requested]; !exists || owner == source {
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[requested]
	if counter == 0 {
		counter = 1
	}
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		if owner, exists := cr.owners[candidate]; !exists || owner == source {
			cr.counters[requested] = counter + 1
			return candidate
		}
		counter++
	}
}
