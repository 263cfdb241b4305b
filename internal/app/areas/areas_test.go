package areas

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestFilter(t *testing.T) {
	is := is.New(t)

	input := []AreaRecord{
		{ID: 1, Type: "EUP", Name: "European Parliament"},
		{ID: 2, Type: "OLF", TypeName: "LSOA (Full)", Name: "Camden 001A"},
		{ID: 3, Type: "WD", TypeName: "Ward", Name: "Bloomsbury"},
	}

	filtered := Filter(input)

	is.Equal(len(filtered), 2)
	is.Equal(filtered[0].Type, "OLF")
	is.Equal(filtered[0].TypeName, "LSOA")
	is.Equal(filtered[1].Type, "WD")
	is.Equal(filtered[1].TypeName, "Ward")

	is.Equal(input[1].TypeName, "LSOA (Full)") // input untouched
}

func TestFilterDropsEveryExcludedType(t *testing.T) {
	is := is.New(t)

	input := []AreaRecord{}
	for i, typ := range excludedTypes {
		input = append(input, AreaRecord{ID: i, Type: typ})
	}
	input = append(input, AreaRecord{ID: 100, Type: "CTY"}, AreaRecord{ID: 101, Type: "DIS"})

	filtered := Filter(input)

	is.Equal(len(filtered), 2)
	is.Equal(filtered[0].ID, 100)
	is.Equal(filtered[1].ID, 101)
}

func TestFilterOnlyRewritesSmallestAreaType(t *testing.T) {
	is := is.New(t)

	filtered := Filter([]AreaRecord{
		{ID: 1, Type: "WD", TypeName: "Ward (Full)"},
	})

	is.Equal(filtered[0].TypeName, "Ward (Full)")
}

func TestFilterIsIdempotent(t *testing.T) {
	is := is.New(t)

	input := []AreaRecord{
		{ID: 1, Type: "OMF"},
		{ID: 2, Type: "OLF", TypeName: "LSOA (Full)"},
		{ID: 3, Type: "OLF", TypeName: "X (Fu (Full)ll)"},
		{ID: 4, Type: "UTA", TypeName: "Unitary Authority"},
	}

	once := Filter(input)
	twice := Filter(once)

	is.Equal(once, twice)
}

func TestFilterEmpty(t *testing.T) {
	is := is.New(t)
	is.Equal(len(Filter(nil)), 0)
}

func TestFirstOfType(t *testing.T) {
	is := is.New(t)

	a := []AreaRecord{{ID: 1, Type: "WD"}, {ID: 2, Type: "OLF"}, {ID: 3, Type: "OLF"}}

	first, ok := FirstOfType(a, SmallestAreaType)
	is.True(ok)
	is.Equal(first.ID, 2)

	_, ok = FirstOfType(a, "CTY")
	is.True(!ok)
}

func TestUnmarshalAreasFromObjectKeepsOrder(t *testing.T) {
	is := is.New(t)

	var result struct {
		Areas Areas `json:"areas"`
	}

	err := json.Unmarshal([]byte(areasObject), &result)
	is.NoErr(err)

	is.Equal(len(result.Areas), 3)
	is.Equal(result.Areas[0].ID, 2651)
	is.Equal(result.Areas[1].ID, 8)
	is.Equal(result.Areas[2].ID, 144953)
	is.Equal(result.Areas[2].TypeName, "Lower Layer Super Output Area (Full)")
	is.Equal(result.Areas[0].Codes["gss"], "E09000007")
}

func TestUnmarshalAreasFromArray(t *testing.T) {
	is := is.New(t)

	var a Areas
	err := json.Unmarshal([]byte(`[{"id":1,"name":"A","type":"WD","type_name":"Ward"}]`), &a)
	is.NoErr(err)
	is.Equal(len(a), 1)
	is.Equal(a[0].Name, "A")
}

func TestUnmarshalAreasEmptyAndNull(t *testing.T) {
	is := is.New(t)

	var result struct {
		Areas Areas `json:"areas"`
	}

	is.NoErr(json.Unmarshal([]byte(`{"areas":{}}`), &result))
	is.Equal(len(result.Areas), 0)

	is.NoErr(json.Unmarshal([]byte(`{"areas":null}`), &result))
	is.Equal(len(result.Areas), 0)
}

func TestUnmarshalAreasSkipsNullMembers(t *testing.T) {
	is := is.New(t)

	var a Areas
	err := json.Unmarshal([]byte(`{"1": null, "2": {"id": 2, "name": "B", "type": "WD", "type_name": "Ward"}}`), &a)
	is.NoErr(err)
	is.Equal(len(a), 1)
	is.Equal(a[0].ID, 2)
}

func TestUnmarshalAreasRejectsScalars(t *testing.T) {
	is := is.New(t)

	var a Areas
	err := json.Unmarshal([]byte(`"nope"`), &a)
	is.True(err != nil)
}

const areasObject string = `{
	"areas": {
		"2651": {"id": 2651, "name": "Camden Borough Council", "type": "LBO", "type_name": "London borough", "country": "E", "parent_area": null, "codes": {"gss": "E09000007"}},
		"8": {"id": 8, "name": "Bloomsbury", "type": "LBW", "type_name": "London borough ward", "country": "E", "parent_area": 2651},
		"144953": {"id": 144953, "name": "Camden 028C", "type": "OLF", "type_name": "Lower Layer Super Output Area (Full)", "country": "E"}
	}
}`
