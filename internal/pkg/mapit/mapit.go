package mapit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/postcode-explorer/internal/app/areas"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("postcode-explorer/mapit")

const DefaultSimplifyTolerance float64 = 0.0001

var ErrNoGeometry = errors.New("area has no geometry")

// NotFoundError is returned for a 404 that carries a JSON error message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Message)
}

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d", e.StatusCode)
}

type PostcodeResult struct {
	Postcode string      `json:"postcode"`
	Lat      float64     `json:"wgs84_lat"`
	Lon      float64     `json:"wgs84_lon"`
	Areas    areas.Areas `json:"areas"`
}

//go:generate moq -rm -out client_mock.go . Client
type Client interface {
	Postcode(ctx context.Context, postcode string) (PostcodeResult, error)
	AreaGeometry(ctx context.Context, areaID int, tolerance float64) (orb.Geometry, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
}

type Option func(*client)

// WithRateLimit spaces outgoing requests to at most perSecond, allowing bursts
// of burst requests. A perSecond of zero or less disables the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

func New(baseURL string, opts ...Option) Client {
	c := &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func PostcodePath(postcode string) string {
	return "/postcode/" + url.PathEscape(postcode)
}

func PostcodeReportPath(postcode string) string {
	return PostcodePath(postcode) + ".html"
}

func AreaGeometryPath(areaID int) string {
	return "/area/" + strconv.Itoa(areaID) + ".geojson"
}

func (c *client) Postcode(ctx context.Context, postcode string) (PostcodeResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "lookup-postcode")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("postcode", postcode))

	var result PostcodeResult

	body, err := c.get(ctx, c.baseURL+PostcodePath(postcode))
	if err != nil {
		return PostcodeResult{}, err
	}

	err = json.Unmarshal(body, &result)
	if err != nil {
		return PostcodeResult{}, fmt.Errorf("could not decode postcode response: %w", err)
	}

	return result, nil
}

func (c *client) AreaGeometry(ctx context.Context, areaID int, tolerance float64) (orb.Geometry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "area-geometry")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.Int("area_id", areaID))

	params := url.Values{}
	params.Add("simplify_tolerance", strconv.FormatFloat(tolerance, 'f', -1, 64))

	body, err := c.get(ctx, c.baseURL+AreaGeometryPath(areaID)+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var g orb.Geometry
	g, err = decodeGeometry(body)
	if err != nil {
		return nil, err
	}

	return g, nil
}

func (c *client) get(ctx context.Context, u string) ([]byte, error) {
	log := logging.GetFromContext(ctx)

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, u)
		if err != nil {
			log.Warn("could not read from response cache", "err", err.Error())
		} else if ok {
			return body, nil
		}
	}

	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "url", u, "err", err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusOK {
		if c.cache != nil {
			if err := c.cache.Set(ctx, u, body); err != nil {
				log.Warn("could not write to response cache", "err", err.Error())
			}
		}
		return body, nil
	}

	log.Debug("unexpected response", "url", u, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		msg := struct {
			Error *string `json:"error"`
		}{}
		if json.Unmarshal(body, &msg) == nil && msg.Error != nil {
			return nil, &NotFoundError{Message: *msg.Error}
		}
	}

	return nil, &StatusError{StatusCode: resp.StatusCode}
}

func decodeGeometry(b []byte) (orb.Geometry, error) {
	t := struct {
		Type string `json:"type"`
	}{}
	err := json.Unmarshal(b, &t)
	if err != nil {
		return nil, fmt.Errorf("could not decode geojson: %w", err)
	}

	var g orb.Geometry

	switch t.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(b)
		if err != nil {
			return nil, fmt.Errorf("could not decode feature collection: %w", err)
		}
		collection := orb.Collection{}
		for _, f := range fc.Features {
			if f.Geometry != nil {
				collection = append(collection, f.Geometry)
			}
		}
		g = collection
	case "Feature":
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return nil, fmt.Errorf("could not decode feature: %w", err)
		}
		g = f.Geometry
	default:
		geometry, err := geojson.UnmarshalGeometry(b)
		if err != nil {
			return nil, fmt.Errorf("could not decode geometry: %w", err)
		}
		g = geometry.Geometry()
	}

	if isEmpty(g) {
		return nil, ErrNoGeometry
	}

	return g, nil
}

func isEmpty(g orb.Geometry) bool {
	if g == nil {
		return true
	}

	switch v := g.(type) {
	case orb.Collection:
		for _, c := range v {
			if !isEmpty(c) {
				return false
			}
		}
		return true
	case orb.MultiPolygon:
		return len(v) == 0
	case orb.Polygon:
		return len(v) == 0
	case orb.MultiLineString:
		return len(v) == 0
	case orb.LineString:
		return len(v) == 0
	case orb.MultiPoint:
		return len(v) == 0
	}

	return false
}
