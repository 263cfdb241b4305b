package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/postcode-explorer/pkg/types"
	"github.com/matryer/is"
)

func TestTrackEventPublishesWithDefaults(t *testing.T) {
	is := is.New(t)

	var published *types.AnalyticsEvent
	m := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			published = message.(*types.AnalyticsEvent)
			return nil
		},
	}

	tr := New(m, "MapIt", time.Second)
	tr.TrackEvent(context.Background(), Event{Category: "homepage-try__search", Action: "submit"})

	is.True(published != nil)
	is.Equal(published.HitType, "event")
	is.Equal(published.Label, "MapIt")
	is.Equal(published.Category, "homepage-try__search")
	is.Equal(published.TopicName(), "analytics.event")
}

func TestTrackEventWaitIsBounded(t *testing.T) {
	is := is.New(t)

	release := make(chan struct{})
	defer close(release)

	m := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			<-release
			return nil
		},
	}

	tr := New(m, "MapIt", 50*time.Millisecond)

	start := time.Now()
	tr.TrackEvent(context.Background(), Event{Category: "slow"})

	is.True(time.Since(start) < time.Second)
}

func TestTrackEventSwallowsErrors(t *testing.T) {
	m := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			return errors.New("broker unavailable")
		},
	}

	New(m, "MapIt", time.Second).TrackEvent(context.Background(), Event{Category: "c"})
}

func TestTrackEventWithoutPublisher(t *testing.T) {
	is := is.New(t)

	start := time.Now()
	New(nil, "MapIt", time.Second).TrackEvent(context.Background(), Event{Category: "c"})
	is.True(time.Since(start) < 100*time.Millisecond)
}

func TestTrackEvents(t *testing.T) {
	is := is.New(t)

	mu := sync.Mutex{}
	categories := map[string]bool{}

	m := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			mu.Lock()
			defer mu.Unlock()
			categories[message.(*types.AnalyticsEvent).Category] = true
			return nil
		},
	}

	New(m, "MapIt", time.Second).TrackEvents(context.Background(), Event{Category: "a"}, Event{Category: "b"}, Event{Category: "c"})

	is.Equal(len(categories), 3)
}

func TestTrackLinkClick(t *testing.T) {
	is := is.New(t)

	var action, navigated string
	m := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			action = message.(*types.AnalyticsEvent).Action
			return nil
		},
	}

	New(m, "MapIt", time.Second).TrackLinkClick(context.Background(), Event{Category: "pricing__docs-button"}, "/docs/", func(href string) {
		navigated = href
	})

	is.Equal(action, "click")
	is.Equal(navigated, "/docs/")
}
