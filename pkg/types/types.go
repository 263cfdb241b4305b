package types

import (
	"encoding/json"
	"time"
)

type AnalyticsEvent struct {
	HitType   string    `json:"hitType"`
	Category  string    `json:"eventCategory"`
	Action    string    `json:"eventAction"`
	Label     string    `json:"eventLabel,omitempty"`
	PageID    string    `json:"pageID,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AnalyticsEvent) Body() []byte {
	b, _ := json.Marshal(e)
	return b
}
func (e *AnalyticsEvent) ContentType() string {
	return "application/vnd.diwise.analyticsevent+json"
}
func (e *AnalyticsEvent) TopicName() string {
	return "analytics.event"
}
