package arrivals

import (
	"context"
	"strconv"
	"time"
)

// MockFetcher is a local fallback fetcher used when no feed API key is
// configured, and the stand-in for the remote service in tests.
type MockFetcher struct {
	// Err, when set, is returned from every Fetch call.
	Err error
	// Feed, when set, is returned verbatim. Otherwise Fetch serves a canned
	// single-arrival feed echoing the requested stop.
	Feed *Feed
}

func NewMockFetcher() *MockFetcher { return &MockFetcher{} }

func (m *MockFetcher) Fetch(_ context.Context, stop StopID) (Feed, error) {
	if m.Err != nil {
		return Feed{}, m.Err
	}
	if m.Feed != nil {
		return *m.Feed, nil
	}
	return Feed{
		Stop:      strconv.Itoa(int(stop)),
		Timestamp: time.Now().Format("1/2/2006 3:04:05 PM"),
		Arrivals: []Record{
			{Route: "1", Headsign: "UH Manoa", StopTime: "9:35am", EstimatedByGPS: true},
			{Route: "13", Headsign: "Waikiki Beach and Hotels", StopTime: "9:42am"},
		},
	}, nil
}
