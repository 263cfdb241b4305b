package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diwise/postcode-explorer/internal/app/subscriptions"
)

type lookupRequest struct {
	Postcode string `json:"postcode"`
}

type linkRequest struct {
	Category string `json:"category"`
	Href     string `json:"href"`
}

type eventRequest struct {
	Category string `json:"eventCategory"`
	Action   string `json:"eventAction"`
	Label    string `json:"eventLabel"`
	HitType  string `json:"hitType"`
	PageID   string `json:"pageID"`
}

type quoteRequest struct {
	subscriptions.Form
	HasPaymentData bool `json:"hasPaymentData"`
}

type pageSummary struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	LastActive string `json:"lastActive"`
}

type errorResponse struct {
	Error string `json:"error"`
}

/* - - - - - - - - - - */

type meta struct {
	TotalRecords uint64  `json:"totalRecords"`
	Offset       *uint64 `json:"offset,omitempty"`
	Limit        *uint64 `json:"limit,omitempty"`
	Count        *uint64 `json:"count,omitempty"`
}

type links struct {
	Self *string `json:"self,omitempty"`
	Prev *string `json:"prev,omitempty"`
	Next *string `json:"next,omitempty"`
}

type ApiResponse struct {
	Meta  *meta  `json:"meta,omitempty"`
	Data  any    `json:"data"`
	Links *links `json:"links,omitempty"`
}

func NewApiResponse(data any) ApiResponse {
	return ApiResponse{Data: data}
}

// NewPagedApiResponse describes one window of a listing. Links are only added
// when the window does not hold every record.
func NewPagedApiResponse(r *http.Request, data any, count, total, offset, limit uint64) ApiResponse {
	m := &meta{
		TotalRecords: total,
		Count:        &count,
	}

	if offset > 0 {
		m.Offset = &offset
	}

	if count != total {
		m.Limit = &limit
	}

	return ApiResponse{
		Meta:  m,
		Data:  data,
		Links: pageLinks(*r.URL, total, offset, limit),
	}
}

func (r ApiResponse) Byte() []byte {
	b, _ := json.Marshal(r)
	return b
}

func pageLinks(u url.URL, total, offset, limit uint64) *links {
	if limit == 0 || (offset == 0 && limit >= total) {
		return nil
	}

	query := u.Query()

	at := func(o uint64) *string {
		query.Set("offset", strconv.FormatUint(o, 10))
		query.Set("limit", strconv.FormatUint(limit, 10))
		u.RawQuery = query.Encode()
		s := u.String()
		return &s
	}

	l := &links{Self: at(offset)}

	if offset+limit < total {
		l.Next = at(offset + limit)
	}

	if offset > 0 {
		l.Prev = at(offset - min(offset, limit))
	}

	return l
}
