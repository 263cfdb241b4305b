package explorer

import (
	"context"
	"errors"
	"slices"

	"github.com/diwise/postcode-explorer/internal/app/areas"
	"github.com/diwise/postcode-explorer/internal/app/overlays"
	"github.com/diwise/postcode-explorer/internal/pkg/mapit"
	"github.com/diwise/postcode-explorer/internal/pkg/mapview"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var meter = otel.Meter("postcode-explorer/explorer")

var lookupCounter, _ = meter.Int64Counter(
	"explorer.lookups",
	metric.WithDescription("Number of completed postcode lookups by outcome"),
)

const formScrollTarget string = "homepage-try"

func (p *Page) submit(ctx context.Context, postcode string) {
	log := logging.GetFromContext(ctx)

	p.track(ctx, "homepage-try__search", "submit")

	p.clearPanels()

	p.input = postcode
	p.location = ""
	p.scrollTarget = formScrollTarget
	p.state = Loading

	if html, err := p.renderer.Render(string(LoadingPanel), nil); err == nil {
		p.panels = append(p.panels, Panel{Kind: LoadingPanel, HTML: html})
	} else {
		log.Warn("could not render loading panel", "err", err.Error())
	}

	p.generation++
	generation := p.generation

	client := p.client

	p.async(ctx, func(ctx context.Context) func() {
		result, err := client.Postcode(ctx, postcode)

		return func() {
			p.completeLookup(ctx, generation, postcode, result, err)
		}
	})
}

// clearPanels removes every result, error and loading panel together with the
// map and overlays that belong to the result.
func (p *Page) clearPanels() {
	p.panels = p.panels[:0]

	if p.loader != nil {
		p.loader.Dispose()
	}

	p.loader = nil
	p.m = nil
	p.result = nil
}

func (p *Page) completeLookup(ctx context.Context, generation uint64, postcode string, result mapit.PostcodeResult, err error) {
	log := logging.GetFromContext(ctx)

	if generation != p.generation {
		log.Debug("dropping response for superseded lookup", "postcode", postcode)
		return
	}

	p.removePanels(LoadingPanel)

	if err != nil {
		var nf *mapit.NotFoundError
		if errors.As(err, &nf) {
			p.showError(ctx, postcode, nf.Message)
			return
		}

		log.Info("postcode lookup failed", "postcode", postcode, "err", err.Error())
		p.fallback(ctx, postcode)
		return
	}

	if len(result.Areas) == 0 {
		p.fallback(ctx, postcode)
		return
	}

	p.showResult(ctx, postcode, result)
}

func (p *Page) showError(ctx context.Context, postcode, message string) {
	html, err := p.renderer.Render(string(ErrorPanel), errorView{Error: message})
	if err != nil {
		logging.GetFromContext(ctx).Error("could not render error panel", "err", err.Error())
		p.fallback(ctx, postcode)
		return
	}

	p.panels = append(p.panels, Panel{Kind: ErrorPanel, HTML: html})
	p.state = Failed

	recordLookup(ctx, Failed)
}

func (p *Page) showResult(ctx context.Context, postcode string, result mapit.PostcodeResult) {
	displayed := result.Postcode
	if displayed == "" {
		displayed = postcode
	}

	filtered := areas.Filter(result.Areas)

	p.result = &resultView{
		Postcode:  displayed,
		ReportURL: mapit.PostcodeReportPath(displayed),
		Areas:     filtered,
	}

	html, err := p.renderResult()
	if err != nil {
		logging.GetFromContext(ctx).Error("could not render result panel", "err", err.Error())
		p.result = nil
		p.fallback(ctx, postcode)
		return
	}

	p.panels = append(p.panels, Panel{Kind: ResultPanel, HTML: html})

	point := orb.Point{result.Lon, result.Lat}

	p.m = mapview.New(p.settings.MapOptions)
	p.m.SetView(point, p.settings.Zoom)
	p.m.AddLayer(&mapview.Marker{At: point})
	p.m.AddLayer(&mapview.TileLayer{
		URLTemplate: p.settings.TileURL,
		Attribution: p.settings.Attribution,
		MinZoom:     p.settings.MapOptions.MinZoom,
		MaxZoom:     p.settings.MapOptions.MaxZoom,
	})

	p.loader = overlays.NewLoader(p.m, p.client, scheduler{p}, p.settings.OverlayStyle, p.settings.SimplifyTolerance)

	if smallest, ok := areas.FirstOfType(filtered, areas.SmallestAreaType); ok {
		p.loader.Load(ctx, smallest.ID)
	}

	p.state = Found

	recordLookup(ctx, Found)
}

func (p *Page) fallback(ctx context.Context, postcode string) {
	p.navigate(ctx, mapit.PostcodeReportPath(postcode))
	p.state = Fallback

	recordLookup(ctx, Fallback)
}

func (p *Page) toggle(ctx context.Context, areaID int) {
	log := logging.GetFromContext(ctx)

	if p.loader == nil || p.result == nil || !p.resultVisible() {
		log.Debug("no result panel to select areas in", "area_id", areaID)
		return
	}

	known := slices.ContainsFunc(p.result.Areas, func(a areas.AreaRecord) bool {
		return a.ID == areaID
	})
	if !known {
		log.Debug("area is not part of the current result", "area_id", areaID)
		return
	}

	p.track(ctx, "homepage-try__area-box", "click")

	p.loader.Toggle(ctx, areaID)
}

func (p *Page) close(ctx context.Context) {
	if !p.resultVisible() {
		return
	}

	p.track(ctx, "homepage-try__close", "click")

	for i := range p.panels {
		if p.panels[i].Kind == ResultPanel {
			p.panels[i].Hidden = true
		}
	}

	p.input = ""
	p.state = Idle
}

func (p *Page) resultVisible() bool {
	return slices.ContainsFunc(p.panels, func(panel Panel) bool {
		return panel.Kind == ResultPanel && !panel.Hidden
	})
}

func (p *Page) removePanels(kind PanelKind) {
	p.panels = slices.DeleteFunc(p.panels, func(panel Panel) bool {
		return panel.Kind == kind
	})
}

func (p *Page) renderResult() (string, error) {
	view := *p.result
	view.Selected = map[int]bool{}

	if p.loader != nil {
		for _, id := range p.loader.Controls().Selected() {
			view.Selected[id] = true
		}
	}

	return p.renderer.Render(string(ResultPanel), view)
}

func recordLookup(ctx context.Context, outcome State) {
	attr := attribute.String("outcome", string(outcome))

	trace.SpanFromContext(ctx).AddEvent("lookup-completed", trace.WithAttributes(attr))

	if lookupCounter != nil {
		lookupCounter.Add(ctx, 1, metric.WithAttributes(attr))
	}
}
