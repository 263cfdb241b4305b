package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestLoad(t *testing.T) {
	is := is.New(t)

	c, err := Load(strings.NewReader(yamlConfig))
	is.NoErr(err)

	is.Equal(c.MapIt.URL, "http://mapit.local")
	is.Equal(c.MapIt.RateLimit, 1.5)
	is.Equal(c.MapIt.Burst, 10) // default kept
	is.Equal(c.Overlay.Style.Color, "#FF0000")
	is.Equal(c.Overlay.Style.Weight, 3) // default kept
	is.Equal(c.Page.TTL, 10*time.Minute)
	is.Equal(c.Pricing.Plans["basic"], 15.0)
	is.Equal(c.Map.MaxZoom, 14)
}

func TestLoadEmpty(t *testing.T) {
	is := is.New(t)

	c, err := Load(strings.NewReader(""))
	is.NoErr(err)
	is.Equal(c, Default())
}

func TestLoadConfigurationWithoutFile(t *testing.T) {
	is := is.New(t)

	t.Setenv("MAPIT_URL", "http://localhost:8000")

	c, err := LoadConfiguration(context.Background(), "/does/not/exist.yaml")
	is.NoErr(err)
	is.Equal(c.MapIt.URL, "http://localhost:8000")
	is.Equal(c.Map.Zoom, 14)
}

func TestMapOptions(t *testing.T) {
	is := is.New(t)

	o := Default().Map.Options()
	is.True(!o.ScrollWheelZoom)
	is.Equal(o.MinZoom, 4)
	is.Equal(o.MaxZoom, 14)
}

const yamlConfig string = `
mapit:
  url: http://mapit.local
  rateLimit: 1.5
overlay:
  style:
    color: "#FF0000"
page:
  ttl: 10m
pricing:
  plans:
    basic: 15
`
