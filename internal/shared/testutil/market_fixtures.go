package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

// FixtureAPIKey is the key MarketAPI expects unless overridden
const FixtureAPIKey = "test-api-key"

// Bar is an OHLCV fixture; Day is YYYY-MM-DD and becomes unix seconds at UTC midnight
type Bar struct {
	Day    string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Response is a canned reply for one unit
type Response struct {
	Status int
	Body   string
	Delay  time.Duration
}

// RecordedRequest captures what the fake API received
type RecordedRequest struct {
	Path   string
	Query  url.Values
	APIKey string
}

// MarketAPI is an httptest server emulating the token ohlcv and mcap endpoints.
// Units without a canned response get 404.
type MarketAPI struct {
	Server *httptest.Server
	APIKey string

	mu       sync.Mutex
	ohlcv    map[string]Response
	mcap     map[string]Response
	requests []RecordedRequest
}

// NewMarketAPI starts a fake API closed on test cleanup
func NewMarketAPI(t *testing.T) *MarketAPI {
	t.Helper()
	api := &MarketAPI{
		APIKey: FixtureAPIKey,
		ohlcv:  make(map[string]Response),
		mcap:   make(map[string]Response),
	}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the base URL to configure clients with
func (a *MarketAPI) URL() string {
	return a.Server.URL + "/api/v1"
}

// SetBars serves bars for unit
func (a *MarketAPI) SetBars(unit string, bars ...Bar) {
	a.SetOHLCV(unit, Response{Status: http.StatusOK, Body: BarsJSON(bars...)})
}

// SetSupply serves a circulating supply for unit
func (a *MarketAPI) SetSupply(unit string, supply float64) {
	a.SetMarketCap(unit, Response{Status: http.StatusOK, Body: SupplyJSON(supply)})
}

// SetOHLCV sets the raw ohlcv response for unit
func (a *MarketAPI) SetOHLCV(unit string, r Response) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ohlcv[unit] = r
}

// SetMarketCap sets the raw mcap response for unit
func (a *MarketAPI) SetMarketCap(unit string, r Response) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mcap[unit] = r
}

// Requests returns a copy of the received requests
func (a *MarketAPI) Requests() []RecordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]RecordedRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

func (a *MarketAPI) serve(w http.ResponseWriter, r *http.Request) {
	unit := r.URL.Query().Get("unit")

	a.mu.Lock()
	a.requests = append(a.requests, RecordedRequest{
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		APIKey: r.Header.Get("x-api-key"),
	})
	var (
		resp  Response
		found bool
	)
	switch {
	case strings.HasSuffix(r.URL.Path, "/token/ohlcv"):
		resp, found = a.ohlcv[unit]
	case strings.HasSuffix(r.URL.Path, "/token/mcap"):
		resp, found = a.mcap[unit]
	}
	a.mu.Unlock()

	if r.Header.Get("x-api-key") != a.APIKey {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if !found {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}

// BarsJSON renders bars in the API's ohlcv array format
func BarsJSON(bars ...Bar) string {
	type wire struct {
		Time   int64   `json:"time"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	}
	out := make([]wire, 0, len(bars))
	for _, b := range bars {
		day, err := time.Parse("2006-01-02", b.Day)
		if err != nil {
			panic(fmt.Sprintf("bad fixture day %q: %v", b.Day, err))
		}
		out = append(out, wire{
			Time: day.Unix(), Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		})
	}
	data, _ := json.Marshal(out)
	return string(data)
}

// SupplyJSON renders an mcap payload carrying circSupply
func SupplyJSON(supply float64) string {
	data, _ := json.Marshal(map[string]any{
		"circSupply":  supply,
		"fdv":         0,
		"mcap":        0,
		"price":       0,
		"ticker":      "TEST",
		"totalSupply": supply,
	})
	return string(data)
}
