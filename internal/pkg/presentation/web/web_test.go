package web

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
)

type area struct {
	ID       int
	Name     string
	TypeName string
}

func TestRenderResult(t *testing.T) {
	is := is.New(t)

	templates, err := New("")
	is.NoErr(err)

	html, err := templates.Render("try-result", struct {
		Postcode  string
		ReportURL string
		Areas     []area
		Selected  map[int]bool
	}{
		Postcode:  "SW1A 1AA",
		ReportURL: "/postcode/SW1A%201AA.html",
		Areas:     []area{{ID: 8, Name: "St James's", TypeName: "Ward"}, {ID: 9, Name: "Westminster 018C", TypeName: "LSOA"}},
		Selected:  map[int]bool{9: true},
	})
	is.NoErr(err)

	is.True(strings.Contains(html, `data-areaid="8"`))
	is.True(strings.Contains(html, `class="homepage-try-result__area selected" data-areaid="9"`))
	is.True(strings.Contains(html, `St James&#39;s`))
	is.True(strings.Contains(html, `href="/postcode/SW1A%201AA.html"`))
}

func TestRenderErrorEscapesMessage(t *testing.T) {
	is := is.New(t)

	templates, err := New("")
	is.NoErr(err)

	html, err := templates.Render("try-error", map[string]string{"Error": "<b>Postcode not found</b>"})
	is.NoErr(err)
	is.True(strings.Contains(html, "&lt;b&gt;Postcode not found&lt;/b&gt;"))
}

func TestRenderLoading(t *testing.T) {
	is := is.New(t)

	templates, err := New("")
	is.NoErr(err)

	html, err := templates.Render("try-loading", nil)
	is.NoErr(err)
	is.True(strings.Contains(html, "homepage-try-loading"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	is := is.New(t)

	templates, err := New("")
	is.NoErr(err)

	_, err = templates.Render("try-missing", nil)
	is.True(errors.Is(err, ErrTemplateNotFound))
}
