package explorer

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diwise/postcode-explorer/internal/app/overlays"
	"github.com/diwise/postcode-explorer/internal/pkg/analytics"
	"github.com/diwise/postcode-explorer/internal/pkg/mapit"
	"github.com/diwise/postcode-explorer/internal/pkg/mapview"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

var ErrPageStopped = errors.New("page has been stopped")

// Page models one browser page with the postcode form. UI events and network
// completions are applied one at a time by the page's event loop, everything
// below the loop section of the struct is owned by that goroutine.
type Page struct {
	id       string
	client   mapit.Client
	renderer Renderer
	tracker  analytics.Tracker
	settings Settings

	ctx      context.Context
	cancel   context.CancelFunc
	events   chan func()
	stopOnce sync.Once

	lastActive atomic.Int64

	// loop
	state        State
	input        string
	scrollTarget string
	panels       []Panel
	result       *resultView
	m            *mapview.Map
	loader       *overlays.Loader
	location     string
	generation   uint64
	pending      int
	waiters      []chan struct{}
}

func NewPage(ctx context.Context, id string, c mapit.Client, r Renderer, t analytics.Tracker, s Settings) *Page {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	p := &Page{
		id:       id,
		client:   c,
		renderer: r,
		tracker:  t,
		settings: s,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan func()),
		state:    Idle,
		panels:   make([]Panel, 0),
	}
	p.touch()

	go p.run()

	return p
}

func (p *Page) ID() string {
	return p.id
}

func (p *Page) LastActive() time.Time {
	return time.Unix(0, p.lastActive.Load())
}

func (p *Page) Submit(ctx context.Context, postcode string) error {
	return p.post(ctx, func() { p.submit(ctx, postcode) })
}

func (p *Page) Toggle(ctx context.Context, areaID int) error {
	return p.post(ctx, func() { p.toggle(ctx, areaID) })
}

func (p *Page) Close(ctx context.Context) error {
	return p.post(ctx, func() { p.close(ctx) })
}

// FollowLink tracks a click on a link inside the page and then navigates to href.
func (p *Page) FollowLink(ctx context.Context, category, href string) error {
	return p.post(ctx, func() { p.followLink(ctx, category, href) })
}

func (p *Page) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)

	err := p.post(ctx, func() { reply <- p.snapshot() })
	if err != nil {
		return Snapshot{}, err
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-p.ctx.Done():
		return Snapshot{}, ErrPageStopped
	}
}

// Settle waits until no network call started by the page is outstanding.
func (p *Page) Settle(ctx context.Context) error {
	settled := make(chan struct{})

	err := p.post(ctx, func() {
		if p.pending == 0 {
			close(settled)
			return
		}
		p.waiters = append(p.waiters, settled)
	})
	if err != nil {
		return err
	}

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPageStopped
	}
}

// Stop ends the event loop and cancels outstanding network calls.
func (p *Page) Stop() {
	p.stopOnce.Do(p.cancel)
}

func (p *Page) run() {
	for {
		select {
		case fn := <-p.events:
			fn()
			p.notifySettled()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Page) post(ctx context.Context, fn func()) error {
	if p.ctx.Err() != nil {
		return ErrPageStopped
	}

	p.touch()

	select {
	case p.events <- fn:
		return nil
	case <-p.ctx.Done():
		return ErrPageStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Page) touch() {
	p.lastActive.Store(time.Now().UnixNano())
}

func (p *Page) notifySettled() {
	if p.pending > 0 {
		return
	}
	for _, w := range p.waiters {
		close(w)
	}
	p.waiters = nil
}

// async runs work on its own goroutine and applies the func it returns on the
// loop. The work context keeps the values of ctx but is only cancelled when
// the page stops.
func (p *Page) async(ctx context.Context, work func(ctx context.Context) func()) {
	p.pending++

	workCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(p.ctx, cancel)

	go func() {
		defer stop()
		defer cancel()

		apply := work(workCtx)

		select {
		case p.events <- func() {
			p.pending--
			if apply != nil {
				apply()
			}
		}:
		case <-p.ctx.Done():
		}
	}()
}

type scheduler struct {
	p *Page
}

func (s scheduler) Go(ctx context.Context, work func(ctx context.Context) func()) {
	s.p.async(ctx, work)
}

func (p *Page) track(ctx context.Context, category, action string) {
	if p.tracker == nil {
		return
	}

	e := analytics.Event{Category: category, Action: action, PageID: p.id}
	go p.tracker.TrackEvent(context.WithoutCancel(ctx), e)
}

func (p *Page) followLink(ctx context.Context, category, href string) {
	if p.tracker == nil {
		p.navigate(ctx, href)
		return
	}

	e := analytics.Event{Category: category, Action: "click", PageID: p.id}

	p.async(ctx, func(ctx context.Context) func() {
		target := ""
		p.tracker.TrackLinkClick(ctx, e, href, func(h string) { target = h })

		return func() {
			if target != "" {
				p.navigate(ctx, target)
			}
		}
	})
}

func (p *Page) navigate(ctx context.Context, location string) {
	logging.GetFromContext(ctx).Debug("navigating", "page_id", p.id, "location", location)
	p.location = location
}

func (p *Page) snapshot() Snapshot {
	s := Snapshot{
		ID:           p.id,
		State:        p.state,
		Input:        p.input,
		ScrollTarget: p.scrollTarget,
		Panels:       slices.Clone(p.panels),
		Selected:     []int{},
		Overlays:     []int{},
		Location:     p.location,
	}

	if p.loader != nil {
		s.Selected = append(s.Selected, p.loader.Controls().Selected()...)
		s.Overlays = append(s.Overlays, p.loader.Store().IDs()...)
	}

	if p.m != nil {
		ms := p.m.State()
		s.Map = &ms
	}

	if p.result != nil {
		if html, err := p.renderResult(); err == nil {
			for i := range s.Panels {
				if s.Panels[i].Kind == ResultPanel {
					s.Panels[i].HTML = html
				}
			}
		}
	}

	return s
}
