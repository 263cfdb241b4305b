package explorer

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
)

var ErrPageNotFound = errors.New("page not found")

type PageFactory func(ctx context.Context, id string) *Page

// Registry keeps the open pages and stops the ones that have been idle for
// longer than the ttl.
type Registry struct {
	mu      sync.Mutex
	pages   map[string]*Page
	newPage PageFactory
	ttl     time.Duration
}

func NewRegistry(newPage PageFactory, ttl time.Duration) *Registry {
	return &Registry{
		pages:   make(map[string]*Page),
		newPage: newPage,
		ttl:     ttl,
	}
}

func (r *Registry) Create(ctx context.Context) *Page {
	id := uuid.NewString()
	p := r.newPage(ctx, id)

	r.mu.Lock()
	r.pages[id] = p
	r.mu.Unlock()

	return p
}

func (r *Registry) Get(id string) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pages[id]
	if !ok {
		return nil, ErrPageNotFound
	}

	return p, nil
}

func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	p, ok := r.pages[id]
	delete(r.pages, id)
	r.mu.Unlock()

	if !ok {
		return ErrPageNotFound
	}

	p.Stop()

	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.pages))
}

// Evict stops and removes pages not used since now minus the ttl.
func (r *Registry) Evict(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	expired := make([]*Page, 0)

	r.mu.Lock()
	for id, p := range r.pages {
		if now.Sub(p.LastActive()) > r.ttl {
			expired = append(expired, p)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for _, p := range expired {
		p.Stop()
	}

	return len(expired)
}

// Run evicts idle pages until ctx is done and then stops every page.
func (r *Registry) Run(ctx context.Context) {
	log := logging.GetFromContext(ctx)

	interval := r.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := r.Evict(now); n > 0 {
				log.Debug("evicted idle pages", "count", n)
			}
		case <-ctx.Done():
			r.stopAll()
			return
		}
	}
}

func (r *Registry) stopAll() {
	r.mu.Lock()
	pages := r.pages
	r.pages = make(map[string]*Page)
	r.mu.Unlock()

	for _, p := range pages {
		p.Stop()
	}
}
