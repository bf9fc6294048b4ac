package arrivals

import (
	"encoding/xml"
	"fmt"
)

// StopID is a validated positive stop number. Everything downstream of slot
// validation requires this type, never a raw string.
type StopID int

// CancellationState mirrors the feed's canceled flag values {0, 1, -1}.
type CancellationState int

const (
	NotCanceled      CancellationState = 0
	Canceled         CancellationState = 1
	NoLongerCanceled CancellationState = -1
)

// Record is one predicted or actual arrival, materialized once per fetch.
type Record struct {
	Route          string
	Headsign       string
	StopTime       string // already formatted by the feed, e.g. "9:35am"
	EstimatedByGPS bool
	Cancellation   CancellationState
}

// Feed is the deserialized arrivals document for one stop.
//
// Arrivals is nil when the document carried no arrival elements at all,
// which the upstream service uses for unknown stops. A non-nil empty slice
// is the distinct "zero records" case; the translator narrates the two
// differently.
type Feed struct {
	Stop      string
	Timestamp string
	Arrivals  []Record
}

type feedXML struct {
	XMLName   xml.Name     `xml:"stopTimes"`
	Stop      string       `xml:"stop"`
	Timestamp string       `xml:"timestamp"`
	Arrivals  []arrivalXML `xml:"arrival"`
}

type arrivalXML struct {
	Route     string `xml:"route"`
	Headsign  string `xml:"headsign"`
	StopTime  string `xml:"stopTime"`
	Direction string `xml:"direction"`
	Date      string `xml:"date"`
	Estimated int    `xml:"estimated"`
	Canceled  int    `xml:"canceled"`
}

// ParseFeed deserializes a raw arrivals document. A document without the
// expected stopTimes root is an error, not an empty feed.
func ParseFeed(raw []byte) (Feed, error) {
	var doc feedXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return Feed{}, fmt.Errorf("decode stopTimes: %w", err)
	}

	feed := Feed{Stop: doc.Stop, Timestamp: doc.Timestamp}
	for _, a := range doc.Arrivals {
		feed.Arrivals = append(feed.Arrivals, Record{
			Route:          a.Route,
			Headsign:       a.Headsign,
			StopTime:       a.StopTime,
			EstimatedByGPS: a.Estimated == 1,
			Cancellation:   cancellationFromFlag(a.Canceled),
		})
	}
	return feed, nil
}

func cancellationFromFlag(flag int) CancellationState {
	switch flag {
	case 1:
		return Canceled
	case -1:
		return NoLongerCanceled
	default:
		return NotCanceled
	}
}
