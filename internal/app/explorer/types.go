package explorer

import (
	"github.com/diwise/postcode-explorer/internal/app/areas"
	"github.com/diwise/postcode-explorer/internal/pkg/mapview"
)

type State string

const (
	Idle     State = "idle"
	Loading  State = "loading"
	Found    State = "found"
	Failed   State = "error"
	Fallback State = "fallback"
)

type PanelKind string

const (
	LoadingPanel PanelKind = "try-loading"
	ErrorPanel   PanelKind = "try-error"
	ResultPanel  PanelKind = "try-result"
)

type Panel struct {
	Kind   PanelKind `json:"kind"`
	HTML   string    `json:"html"`
	Hidden bool      `json:"hidden,omitempty"`
}

type Snapshot struct {
	ID           string         `json:"id"`
	State        State          `json:"state"`
	Input        string         `json:"input"`
	ScrollTarget string         `json:"scrollTarget,omitempty"`
	Panels       []Panel        `json:"panels"`
	Selected     []int          `json:"selected"`
	Overlays     []int          `json:"overlays"`
	Map          *mapview.State `json:"map,omitempty"`
	Location     string         `json:"location,omitempty"`
}

type Settings struct {
	MapOptions        mapview.Options
	Zoom              int
	TileURL           string
	Attribution       string
	OverlayStyle      mapview.Style
	SimplifyTolerance float64
}

type resultView struct {
	Postcode  string
	ReportURL string
	Areas     []areas.AreaRecord
	Selected  map[int]bool
}

type errorView struct {
	Error string
}

type Renderer interface {
	Render(name string, data any) (string, error)
}
