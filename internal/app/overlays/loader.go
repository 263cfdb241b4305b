package overlays

import (
	"context"

	"github.com/diwise/postcode-explorer/internal/pkg/mapview"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/paulmach/orb"
)

type Map interface {
	AddLayer(l mapview.Layer)
	RemoveLayer(l mapview.Layer)
	FitBounds(b orb.Bound)
}

//go:generate moq -rm -out fetcher_mock.go . GeometryFetcher
type GeometryFetcher interface {
	AreaGeometry(ctx context.Context, areaID int, tolerance float64) (orb.Geometry, error)
}

// Scheduler runs work off the owner's goroutine and hands the func it returns
// back to the owner to apply.
type Scheduler interface {
	Go(ctx context.Context, work func(ctx context.Context) func())
}

type Loader struct {
	store     *Store
	controls  *Controls
	m         Map
	fetcher   GeometryFetcher
	scheduler Scheduler
	style     mapview.Style
	tolerance float64

	seq      uint64
	requests map[int]uint64
	disposed bool
}

func NewLoader(m Map, f GeometryFetcher, s Scheduler, style mapview.Style, tolerance float64) *Loader {
	return &Loader{
		store:     NewStore(),
		controls:  NewControls(),
		m:         m,
		fetcher:   f,
		scheduler: s,
		style:     style,
		tolerance: tolerance,
		requests:  make(map[int]uint64),
	}
}

func (l *Loader) Store() *Store {
	return l.store
}

func (l *Loader) Controls() *Controls {
	return l.controls
}

// Toggle removes the overlay for areaID if there is one. Otherwise selected
// siblings are cleared and the overlay for areaID is loaded.
func (l *Loader) Toggle(ctx context.Context, areaID int) {
	if l.disposed {
		return
	}

	if l.store.Contains(areaID) {
		l.remove(areaID)
		return
	}

	for _, sibling := range l.controls.SelectedSiblings(areaID) {
		l.remove(sibling)
	}

	l.Load(ctx, areaID)
}

// Load marks the control for areaID as selected and fetches its boundary.
func (l *Loader) Load(ctx context.Context, areaID int) {
	if l.disposed {
		return
	}

	l.controls.Select(areaID)

	l.seq++
	token := l.seq
	l.requests[areaID] = token

	fetcher, tolerance := l.fetcher, l.tolerance

	l.scheduler.Go(ctx, func(ctx context.Context) func() {
		g, err := fetcher.AreaGeometry(ctx, areaID, tolerance)

		return func() {
			l.complete(ctx, areaID, token, g, err)
		}
	})
}

func (l *Loader) complete(ctx context.Context, areaID int, token uint64, g orb.Geometry, err error) {
	log := logging.GetFromContext(ctx)

	if l.disposed || l.requests[areaID] != token {
		log.Debug("dropping superseded overlay response", "area_id", areaID)
		return
	}
	delete(l.requests, areaID)

	if err != nil {
		// some areas have no polygons, nothing to tell the user
		log.Debug("could not load area geometry", "area_id", areaID, "err", err.Error())
		l.controls.Deselect(areaID)
		return
	}

	if !l.controls.IsSelected(areaID) || l.store.Contains(areaID) {
		return
	}

	layer := mapview.NewGeoJSON(g, l.style)
	if !l.store.Add(areaID, layer) {
		return
	}

	l.m.AddLayer(layer)
	l.m.FitBounds(layer.Bounds())
}

func (l *Loader) remove(areaID int) {
	delete(l.requests, areaID)

	if layer, ok := l.store.Remove(areaID); ok {
		l.m.RemoveLayer(layer)
	}

	l.controls.Deselect(areaID)
}

// Dispose detaches the loader from its panel. Pending responses are dropped.
func (l *Loader) Dispose() {
	l.disposed = true
	clear(l.requests)
}
