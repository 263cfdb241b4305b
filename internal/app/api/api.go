package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/postcode-explorer/internal/app/explorer"
	"github.com/diwise/postcode-explorer/internal/app/subscriptions"
	"github.com/diwise/postcode-explorer/internal/pkg/analytics"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("postcode-explorer/api")

var errBadRequest = errors.New("bad request")

const defaultLimit uint64 = 10

func Register(ctx context.Context, pages *explorer.Registry, tracker analytics.Tracker, pricing subscriptions.Pricing) *chi.Mux {
	log := logging.GetFromContext(ctx)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v0", func(r chi.Router) {
		r.Route("/pages", func(r chi.Router) {
			r.Get("/", listPagesHandler(log, pages))
			r.Post("/", createPageHandler(log, pages))
			r.Get("/{id}", getPageHandler(log, pages))
			r.Delete("/{id}", deletePageHandler(log, pages))
			r.Post("/{id}/lookup", lookupHandler(log, pages))
			r.Post("/{id}/areas/{areaID}", toggleAreaHandler(log, pages))
			r.Post("/{id}/close", closeHandler(log, pages))
			r.Post("/{id}/links", followLinkHandler(log, pages))
		})

		r.Post("/events", trackEventHandler(log, tracker))
		r.Post("/signup/quote", quoteHandler(log, pricing))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func listPagesHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-pages")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		offset, limit, err := paging(r)
		if err != nil {
			logger.Debug("invalid paging parameters", "err", err.Error())
			writeError(w, http.StatusBadRequest, err)
			return
		}

		ids := pages.IDs()
		total := uint64(len(ids))

		start := min(offset, total)
		end := min(start+limit, total)

		data := make([]pageSummary, 0, end-start)
		for _, id := range ids[start:end] {
			p, err := pages.Get(id)
			if err != nil {
				continue // evicted while listing
			}

			s, err := p.Snapshot(ctx)
			if err != nil {
				continue
			}

			data = append(data, pageSummary{
				ID:         id,
				State:      string(s.State),
				LastActive: p.LastActive().UTC().Format(time.RFC3339),
			})
		}

		writeResponse(w, http.StatusOK, NewPagedApiResponse(r, data, uint64(len(data)), total, start, limit))
	}
}

func createPageHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "create-page")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		p := pages.Create(ctx)

		span.SetAttributes(attribute.String("page_id", p.ID()))

		s, err := p.Snapshot(ctx)
		if err != nil {
			logger.Error("could not read new page", "page_id", p.ID(), "err", err.Error())
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Location", "/api/v0/pages/"+p.ID())
		writeResponse(w, http.StatusCreated, NewApiResponse(s))
	}
}

func getPageHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-page")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		p, err := page(pages, r)
		if err != nil {
			logger.Debug("page not found", "page_id", chi.URLParam(r, "id"))
			writeError(w, http.StatusNotFound, err)
			return
		}

		writeSnapshot(ctx, w, p)
	}
}

func deletePageHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		_, span := tracer.Start(r.Context(), "delete-page")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		id := chi.URLParam(r, "id")

		err = pages.Remove(id)
		if err != nil {
			log.Debug("page not found", "page_id", id)
			writeError(w, http.StatusNotFound, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func lookupHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "lookup-postcode")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		p, err := page(pages, r)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		postcode, err := postcodeFromRequest(r)
		if err != nil {
			logger.Debug("no postcode in request", "err", err.Error())
			writeError(w, http.StatusBadRequest, err)
			return
		}

		span.SetAttributes(attribute.String("postcode", postcode))

		err = p.Submit(ctx, postcode)
		if err != nil {
			logger.Error("could not submit postcode", "page_id", p.ID(), "err", err.Error())
			writeError(w, statusFor(err), err)
			return
		}

		settleAndWriteSnapshot(ctx, w, p)
	}
}

func toggleAreaHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "toggle-area")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		p, err := page(pages, r)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		areaID, err := strconv.Atoi(chi.URLParam(r, "areaID"))
		if err != nil {
			logger.Debug("invalid area id", "err", err.Error())
			writeError(w, http.StatusBadRequest, errBadRequest)
			return
		}

		err = p.Toggle(ctx, areaID)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		settleAndWriteSnapshot(ctx, w, p)
	}
}

func closeHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "close-result")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		p, err := page(pages, r)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		err = p.Close(ctx)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		writeSnapshot(ctx, w, p)
	}
}

func followLinkHandler(log *slog.Logger, pages *explorer.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "follow-link")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		p, err := page(pages, r)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		var req linkRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req.Href == "" || req.Category == "" {
			logger.Debug("invalid link request")
			err = errBadRequest
			writeError(w, http.StatusBadRequest, err)
			return
		}

		err = p.FollowLink(ctx, req.Category, req.Href)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		settleAndWriteSnapshot(ctx, w, p)
	}
}

func trackEventHandler(log *slog.Logger, tracker analytics.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "track-event")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		var req eventRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req.Category == "" || req.Action == "" {
			logger.Debug("invalid event")
			err = errBadRequest
			writeError(w, http.StatusBadRequest, err)
			return
		}

		tracker.TrackEvent(ctx, analytics.Event{
			Category: req.Category,
			Action:   req.Action,
			Label:    req.Label,
			HitType:  req.HitType,
			PageID:   req.PageID,
		})

		w.WriteHeader(http.StatusNoContent)
	}
}

func quoteHandler(log *slog.Logger, pricing subscriptions.Pricing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		_, span := tracer.Start(r.Context(), "signup-quote")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		var req quoteRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			log.Debug("could not decode signup form", "err", err.Error())
			writeError(w, http.StatusBadRequest, errBadRequest)
			return
		}

		writeResponse(w, http.StatusOK, NewApiResponse(pricing.Quote(req.Form, req.HasPaymentData)))
	}
}

func page(pages *explorer.Registry, r *http.Request) (*explorer.Page, error) {
	return pages.Get(chi.URLParam(r, "id"))
}

// postcodeFromRequest reads the postcode from a json body or from the pc
// field of a submitted form.
func postcodeFromRequest(r *http.Request) (string, error) {
	var postcode string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req lookupRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			return "", errBadRequest
		}
		postcode = req.Postcode
	} else {
		err := r.ParseForm()
		if err != nil {
			return "", errBadRequest
		}
		postcode = r.Form.Get("pc")
	}

	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return "", errBadRequest
	}

	return postcode, nil
}

func paging(r *http.Request) (offset, limit uint64, err error) {
	q := r.URL.Query()

	limit = defaultLimit

	if s := q.Get("offset"); s != "" {
		offset, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, 0, errBadRequest
		}
	}

	if s := q.Get("limit"); s != "" {
		limit, err = strconv.ParseUint(s, 10, 64)
		if err != nil || limit == 0 {
			return 0, 0, errBadRequest
		}
	}

	return offset, limit, nil
}

func settleAndWriteSnapshot(ctx context.Context, w http.ResponseWriter, p *explorer.Page) {
	err := p.Settle(ctx)
	if err != nil {
		logging.GetFromContext(ctx).Warn("page did not settle", "page_id", p.ID(), "err", err.Error())
		writeError(w, statusFor(err), err)
		return
	}

	writeSnapshot(ctx, w, p)
}

func writeSnapshot(ctx context.Context, w http.ResponseWriter, p *explorer.Page) {
	s, err := p.Snapshot(ctx)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeResponse(w, http.StatusOK, NewApiResponse(s))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, explorer.ErrPageStopped), errors.Is(err, explorer.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(w http.ResponseWriter, status int, response ApiResponse) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	w.Write(response.Byte())
}

func writeError(w http.ResponseWriter, status int, err error) {
	b, _ := json.Marshal(errorResponse{Error: err.Error()})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
