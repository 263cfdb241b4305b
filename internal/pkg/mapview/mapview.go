package mapview

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

const (
	tileSize         float64 = 256
	mercatorWorldMax float64 = 20037508.342789244
)

type Options struct {
	ScrollWheelZoom bool `json:"scrollWheelZoom"`
	MinZoom         int  `json:"minZoom"`
	MaxZoom         int  `json:"maxZoom"`
	Width           int  `json:"width"`
	Height          int  `json:"height"`
}

func DefaultOptions() Options {
	return Options{
		ScrollWheelZoom: false,
		MinZoom:         4,
		MaxZoom:         14,
		Width:           600,
		Height:          400,
	}
}

type Layer interface {
	Kind() string
}

type TileLayer struct {
	URLTemplate string `json:"url"`
	Attribution string `json:"attribution"`
	MinZoom     int    `json:"minZoom"`
	MaxZoom     int    `json:"maxZoom"`
}

func (t *TileLayer) Kind() string { return "tile" }

type Marker struct {
	At orb.Point `json:"at"`
}

func (m *Marker) Kind() string { return "marker" }

type Style struct {
	Color   string  `json:"color" yaml:"color"`
	Weight  int     `json:"weight" yaml:"weight"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

type GeoJSON struct {
	Geometry orb.Geometry
	Style    Style
}

func NewGeoJSON(g orb.Geometry, s Style) *GeoJSON {
	return &GeoJSON{Geometry: g, Style: s}
}

func (g *GeoJSON) Kind() string { return "geojson" }

func (g *GeoJSON) Bounds() orb.Bound {
	return g.Geometry.Bound()
}

// Map keeps the view and the layer set of a Leaflet style map. It is not safe
// for concurrent use, callers own it from a single goroutine.
type Map struct {
	opts   Options
	center orb.Point
	zoom   int
	layers []Layer
}

func New(opts Options) *Map {
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = opts.MinZoom
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}

	return &Map{
		opts:   opts,
		zoom:   opts.MinZoom,
		layers: make([]Layer, 0),
	}
}

func (m *Map) Options() Options {
	return m.opts
}

func (m *Map) SetView(center orb.Point, zoom int) {
	m.center = center
	m.zoom = m.clampZoom(zoom)
}

func (m *Map) View() (orb.Point, int) {
	return m.center, m.zoom
}

func (m *Map) AddLayer(l Layer) {
	if l == nil || m.HasLayer(l) {
		return
	}
	m.layers = append(m.layers, l)
}

func (m *Map) RemoveLayer(l Layer) {
	m.layers = slices.DeleteFunc(m.layers, func(current Layer) bool {
		return current == l
	})
}

func (m *Map) HasLayer(l Layer) bool {
	return slices.Contains(m.layers, l)
}

func (m *Map) Layers() []Layer {
	return slices.Clone(m.layers)
}

// FitBounds centers the view on b and picks the largest zoom level at which
// b fits inside the viewport.
func (m *Map) FitBounds(b orb.Bound) {
	sw := project.Point(b.Min, project.WGS84.ToMercator)
	ne := project.Point(b.Max, project.WGS84.ToMercator)

	dx := math.Abs(ne.X() - sw.X())
	dy := math.Abs(ne.Y() - sw.Y())

	zoom := m.opts.MaxZoom
	for z := m.opts.MaxZoom; z >= m.opts.MinZoom; z-- {
		zoom = z
		if pixels(dx, z) <= float64(m.opts.Width) && pixels(dy, z) <= float64(m.opts.Height) {
			break
		}
	}

	m.SetView(b.Center(), zoom)
}

func pixels(meters float64, zoom int) float64 {
	return meters / (2 * mercatorWorldMax) * tileSize * math.Pow(2, float64(zoom))
}

func (m *Map) clampZoom(zoom int) int {
	return max(m.opts.MinZoom, min(zoom, m.opts.MaxZoom))
}

type LayerState struct {
	Kind     string            `json:"kind"`
	Tile     *TileLayer        `json:"tile,omitempty"`
	Marker   *orb.Point        `json:"marker,omitempty"`
	Style    *Style            `json:"style,omitempty"`
	Bounds   *orb.Bound        `json:"bounds,omitempty"`
	Geometry *geojson.Geometry `json:"geometry,omitempty"`
}

type State struct {
	Options Options      `json:"options"`
	Center  orb.Point    `json:"center"`
	Zoom    int          `json:"zoom"`
	Layers  []LayerState `json:"layers"`
}

func (m *Map) State() State {
	s := State{
		Options: m.opts,
		Center:  m.center,
		Zoom:    m.zoom,
		Layers:  make([]LayerState, 0, len(m.layers)),
	}

	for _, l := range m.layers {
		ls := LayerState{Kind: l.Kind()}

		switch layer := l.(type) {
		case *TileLayer:
			ls.Tile = layer
		case *Marker:
			p := layer.At
			ls.Marker = &p
		case *GeoJSON:
			b := layer.Bounds()
			style := layer.Style
			ls.Bounds = &b
			ls.Style = &style
			ls.Geometry = geojson.NewGeometry(layer.Geometry)
		}

		s.Layers = append(s.Layers, ls)
	}

	return s
}
