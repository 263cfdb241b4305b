package areas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const SmallestAreaType string = "OLF"

var excludedTypes = []string{
	"EUP", // always just "European Parliament"
	"OMG", // middle layer output areas
	"OMF",
	"OLG", // generalised LSOAs, we want the full ones
	"COI", // always just "Isles of Scilly"
	"GLA", // always just "Greater London Authority"
	"LAE", // always just "London Assembly"
	"LAS",
	"WMP", // always just "House of Commons"
}

type AreaRecord struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	TypeName   string            `json:"type_name"`
	Country    string            `json:"country,omitempty"`
	ParentArea *int              `json:"parent_area,omitempty"`
	Codes      map[string]string `json:"codes,omitempty"`
}

// Areas decodes from a JSON array or from an object keyed by area id. Object
// members are kept in document order.
type Areas []AreaRecord

func (a *Areas) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = nil
		return nil
	}

	if b[0] == '[' {
		var records []AreaRecord
		err := json.Unmarshal(b, &records)
		if err != nil {
			return err
		}
		*a = records
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))

	t, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := t.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("areas must be an array or an object, got %v", t)
	}

	records := make([]AreaRecord, 0)

	for dec.More() {
		// member key, the record carries its own id
		if _, err := dec.Token(); err != nil {
			return err
		}

		var r *AreaRecord
		if err := dec.Decode(&r); err != nil {
			return err
		}

		if r == nil {
			continue
		}

		records = append(records, *r)
	}

	*a = records

	return nil
}

func Excluded(areaType string) bool {
	return slices.Contains(excludedTypes, areaType)
}

// Filter removes area types nobody is interested in and tidies display names.
// The input is never modified and the relative order is kept.
func Filter(areas []AreaRecord) []AreaRecord {
	filtered := make([]AreaRecord, 0, len(areas))

	for _, area := range areas {
		if Excluded(area.Type) {
			continue
		}

		if area.Type == SmallestAreaType {
			area.TypeName = trimFull(area.TypeName)
		}

		filtered = append(filtered, area)
	}

	return filtered
}

func trimFull(typeName string) string {
	for strings.Contains(typeName, " (Full)") {
		typeName = strings.Replace(typeName, " (Full)", "", 1)
	}
	return typeName
}

func FirstOfType(areas []AreaRecord, areaType string) (AreaRecord, bool) {
	i := slices.IndexFunc(areas, func(a AreaRecord) bool {
		return a.Type == areaType
	})
	if i < 0 {
		return AreaRecord{}, false
	}
	return areas[i], true
}
