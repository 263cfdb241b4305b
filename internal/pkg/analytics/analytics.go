package analytics

import (
	"context"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/postcode-explorer/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"golang.org/x/sync/errgroup"
)

const DefaultWait time.Duration = 2 * time.Second

type Event struct {
	Category string `json:"eventCategory"`
	Action   string `json:"eventAction"`
	Label    string `json:"eventLabel,omitempty"`
	HitType  string `json:"hitType,omitempty"`
	PageID   string `json:"pageID,omitempty"`
}

type Publisher interface {
	PublishOnTopic(ctx context.Context, message messaging.TopicMessage) error
}

type Tracker interface {
	TrackEvent(ctx context.Context, e Event)
	TrackEvents(ctx context.Context, events ...Event)
	TrackLinkClick(ctx context.Context, e Event, href string, navigate func(string))
}

type tracker struct {
	publisher Publisher
	label     string
	wait      time.Duration
	now       func() time.Time
}

// New returns a Tracker publishing events on the message bus. A nil publisher
// gives a tracker that returns at once, as when tracking is blocked.
func New(p Publisher, defaultLabel string, wait time.Duration) Tracker {
	if wait <= 0 {
		wait = DefaultWait
	}

	return &tracker{
		publisher: p,
		label:     defaultLabel,
		wait:      wait,
		now:       time.Now,
	}
}

// TrackEvent returns when the event has been published or when the wait has
// expired, whichever comes first. Failures are logged and never returned.
func (t *tracker) TrackEvent(ctx context.Context, e Event) {
	if t.publisher == nil {
		return
	}

	log := logging.GetFromContext(ctx)

	msg := &types.AnalyticsEvent{
		HitType:   "event",
		Category:  e.Category,
		Action:    e.Action,
		Label:     t.label,
		PageID:    e.PageID,
		Timestamp: t.now().UTC(),
	}
	if e.HitType != "" {
		msg.HitType = e.HitType
	}
	if e.Label != "" {
		msg.Label = e.Label
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.wait)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- t.publisher.PublishOnTopic(ctx, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Warn("could not publish analytics event", "category", msg.Category, "err", err.Error())
		}
	case <-ctx.Done():
		log.Debug("gave up waiting for analytics event", "category", msg.Category)
	}
}

func (t *tracker) TrackEvents(ctx context.Context, events ...Event) {
	g := errgroup.Group{}

	for _, e := range events {
		g.Go(func() error {
			t.TrackEvent(ctx, e)
			return nil
		})
	}

	g.Wait()
}

// TrackLinkClick tracks a click on a link and then follows it.
func (t *tracker) TrackLinkClick(ctx context.Context, e Event, href string, navigate func(string)) {
	if e.Action == "" {
		e.Action = "click"
	}

	t.TrackEvent(ctx, e)

	if href != "" && navigate != nil {
		navigate(href)
	}
}
