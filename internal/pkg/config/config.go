package config

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/diwise/postcode-explorer/internal/pkg/mapview"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"gopkg.in/yaml.v2"
)

type Config struct {
	MapIt     MapItConfig     `yaml:"mapit"`
	Map       MapConfig       `yaml:"map"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Page      PageConfig      `yaml:"page"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Pricing   PricingConfig   `yaml:"pricing"`
}

type MapItConfig struct {
	URL string `yaml:"url"`
	// requests per second, zero means unlimited
	RateLimit float64     `yaml:"rateLimit"`
	Burst     int         `yaml:"burst"`
	Cache     CacheConfig `yaml:"cache"`
}

// CacheConfig points at a redis server holding MapIt responses. Caching is off
// when RedisURL is empty.
type CacheConfig struct {
	RedisURL string        `yaml:"redisURL"`
	TTL      time.Duration `yaml:"ttl"`
}

type MapConfig struct {
	TileURL     string `yaml:"tileURL"`
	Attribution string `yaml:"attribution"`
	Zoom        int    `yaml:"zoom"`
	MinZoom     int    `yaml:"minZoom"`
	MaxZoom     int    `yaml:"maxZoom"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
}

type OverlayConfig struct {
	Style             mapview.Style `yaml:"style"`
	SimplifyTolerance float64       `yaml:"simplifyTolerance"`
}

type PageConfig struct {
	Title string        `yaml:"title"`
	TTL   time.Duration `yaml:"ttl"`
}

type AnalyticsConfig struct {
	Wait time.Duration `yaml:"wait"`
}

type PricingConfig struct {
	Minimum float64            `yaml:"minimum"`
	Plans   map[string]float64 `yaml:"plans"`
}

func Default() Config {
	return Config{
		MapIt: MapItConfig{
			URL:       "https://mapit.mysociety.org",
			RateLimit: 5,
			Burst:     10,
			Cache: CacheConfig{
				TTL: 24 * time.Hour,
			},
		},
		Map: MapConfig{
			TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `Map © <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
			Zoom:        14,
			MinZoom:     4,
			MaxZoom:     14,
			Width:       600,
			Height:      400,
		},
		Overlay: OverlayConfig{
			Style: mapview.Style{
				Color:   "#4FADED",
				Weight:  3,
				Opacity: 1,
			},
			SimplifyTolerance: 0.0001,
		},
		Page: PageConfig{
			Title: "MapIt",
			TTL:   30 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			Wait: 2 * time.Second,
		},
		Pricing: PricingConfig{
			Minimum: 20,
			Plans: map[string]float64{
				"mapit-10k-v":  20,
				"mapit-100k-v": 100,
				"mapit-0k-v":   300,
			},
		},
	}
}

// Load reads yaml from r on top of the defaults.
func Load(r io.Reader) (Config, error) {
	c := Default()

	err := yaml.NewDecoder(r).Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	return c, nil
}

// LoadConfiguration reads the config file at path, if there is one, and
// applies environment overrides.
func LoadConfiguration(ctx context.Context, path string) (Config, error) {
	log := logging.GetFromContext(ctx)

	c := Default()

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		log.Debug("no config file found, using defaults", "path", path)
	} else {
		defer f.Close()
		c, err = Load(f)
		if err != nil {
			return Config{}, err
		}
	}

	c.MapIt.URL = env.GetVariableOrDefault(ctx, "MAPIT_URL", c.MapIt.URL)
	c.MapIt.Cache.RedisURL = env.GetVariableOrDefault(ctx, "REDIS_URL", c.MapIt.Cache.RedisURL)

	return c, nil
}

func (c MapConfig) Options() mapview.Options {
	return mapview.Options{
		ScrollWheelZoom: false,
		MinZoom:         c.MinZoom,
		MaxZoom:         c.MaxZoom,
		Width:           c.Width,
		Height:          c.Height,
	}
}
