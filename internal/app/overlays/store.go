package overlays

import (
	"maps"
	"slices"

	"github.com/diwise/postcode-explorer/internal/pkg/mapview"
)

// Store maps area ids to the overlay currently rendered for them. An id is
// present iff its overlay is on the map.
type Store struct {
	layers map[int]*mapview.GeoJSON
}

func NewStore() *Store {
	return &Store{
		layers: make(map[int]*mapview.GeoJSON),
	}
}

// Add refuses a second overlay for an id already present.
func (s *Store) Add(areaID int, layer *mapview.GeoJSON) bool {
	if layer == nil {
		return false
	}
	if _, ok := s.layers[areaID]; ok {
		return false
	}
	s.layers[areaID] = layer
	return true
}

func (s *Store) Remove(areaID int) (*mapview.GeoJSON, bool) {
	layer, ok := s.layers[areaID]
	if ok {
		delete(s.layers, areaID)
	}
	return layer, ok
}

func (s *Store) Get(areaID int) (*mapview.GeoJSON, bool) {
	layer, ok := s.layers[areaID]
	return layer, ok
}

func (s *Store) Contains(areaID int) bool {
	_, ok := s.layers[areaID]
	return ok
}

func (s *Store) IDs() []int {
	return slices.Sorted(maps.Keys(s.layers))
}

func (s *Store) Len() int {
	return len(s.layers)
}

// Controls holds the selected state of the area controls rendered in one
// result panel. All controls of a panel are siblings.
type Controls struct {
	selected map[int]struct{}
}

func NewControls() *Controls {
	return &Controls{
		selected: make(map[int]struct{}),
	}
}

func (c *Controls) Select(areaID int) {
	c.selected[areaID] = struct{}{}
}

func (c *Controls) Deselect(areaID int) {
	delete(c.selected, areaID)
}

func (c *Controls) IsSelected(areaID int) bool {
	_, ok := c.selected[areaID]
	return ok
}

func (c *Controls) Selected() []int {
	return slices.Sorted(maps.Keys(c.selected))
}

func (c *Controls) SelectedSiblings(areaID int) []int {
	return slices.DeleteFunc(c.Selected(), func(id int) bool {
		return id == areaID
	})
}
