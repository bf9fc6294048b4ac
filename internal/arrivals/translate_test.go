package arrivals

import (
	"strings"
	"testing"
)

func TestTranslateNoArrivalsField(t *testing.T) {
	feed := Feed{Stop: "9999", Timestamp: "ts"}

	n := Translate(feed)
	want := "Sorry, no arrivals found for stop 9999. Are you sure this is a valid stop?\n"
	if n.Speech != want {
		t.Fatalf("Speech = %q, want %q", n.Speech, want)
	}
	if n.Card != n.Speech {
		t.Fatalf("Card = %q, want identical to Speech", n.Card)
	}
}

func TestTranslateEmptyArrivalsList(t *testing.T) {
	feed := Feed{Stop: "214", Arrivals: []Record{}}

	n := Translate(feed)
	if !strings.HasPrefix(n.Speech, "Here are the arrivals for bus stop 214.\n") {
		t.Fatalf("Speech missing header: %q", n.Speech)
	}
	if !strings.HasSuffix(n.Speech, "Sorry, no arrivals were returned.\n") {
		t.Fatalf("Speech missing empty-list fallback: %q", n.Speech)
	}
}

func TestTranslateEstimatedArrival(t *testing.T) {
	feed := Feed{Stop: "214", Arrivals: []Record{
		{Route: "1", Headsign: "UH Manoa", StopTime: "9:35am", EstimatedByGPS: true},
	}}

	n := Translate(feed)
	want := "Route 1 heading to University of Hawaii Manoa arriving at 9:35am estimated by GPS.\n"
	if !strings.Contains(n.Speech, want) {
		t.Fatalf("Speech = %q, want to contain %q", n.Speech, want)
	}
}

func TestTranslateScheduledArrivalKeepsUnknownHeadsign(t *testing.T) {
	feed := Feed{Stop: "42", Arrivals: []Record{
		{Route: "13", Headsign: "Waikiki Beach and Hotels", StopTime: "9:42am"},
	}}

	n := Translate(feed)
	want := "Route 13 heading to Waikiki Beach and Hotels arriving at 9:42am as scheduled.\n"
	if !strings.Contains(n.Speech, want) {
		t.Fatalf("Speech = %q, want to contain %q", n.Speech, want)
	}
}

func TestTranslateNoLongerCanceledClause(t *testing.T) {
	feed := Feed{Stop: "42", Arrivals: []Record{
		{Route: "2", Headsign: "School Street", StopTime: "10:05am", Cancellation: NoLongerCanceled},
	}}

	n := Translate(feed)
	want := "Route 2 heading to School Street arriving at 10:05am as scheduled. This arrival was previously canceled but is no longer.\n"
	if !strings.Contains(n.Speech, want) {
		t.Fatalf("Speech = %q, want to contain %q", n.Speech, want)
	}
}

func TestTranslateAllCanceledSingleFallback(t *testing.T) {
	for _, count := range []int{1, 10} {
		var records []Record
		for i := 0; i < count; i++ {
			records = append(records, Record{Route: "1", Headsign: "Downtown", StopTime: "9:00am", Cancellation: Canceled})
		}
		n := Translate(Feed{Stop: "214", Arrivals: records})

		const fallback = "Sorry, only canceled arrivals were found."
		if got := strings.Count(n.Speech, fallback); got != 1 {
			t.Fatalf("with %d canceled records, fallback count = %d, want 1 (speech %q)", count, got, n.Speech)
		}
		if strings.Contains(n.Speech, "heading to") {
			t.Fatalf("canceled arrivals must not be narrated: %q", n.Speech)
		}
	}
}

func TestTranslatePreservesFeedOrder(t *testing.T) {
	feed := Feed{Stop: "1", Arrivals: []Record{
		{Route: "9", Headsign: "Airport", StopTime: "8:10am"},
		{Route: "3", Headsign: "Salt Lake", StopTime: "8:02am"},
	}}

	n := Translate(feed)
	first := strings.Index(n.Speech, "Route 9")
	second := strings.Index(n.Speech, "Route 3")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("records re-ordered: %q", n.Speech)
	}
}

func TestTranslateRouteTimesCapped(t *testing.T) {
	var records []Record
	for i := 0; i < 8; i++ {
		records = append(records, Record{Route: "1", Headsign: "Downtown", StopTime: "9:00am"})
	}
	records = append(records, Record{Route: "2", Headsign: "Kalihi", StopTime: "9:15am"})

	n := Translate(Feed{Stop: "1", Arrivals: records})
	if got := len(n.RouteTimes["1"]); got != maxTimesPerRoute {
		t.Fatalf("RouteTimes[1] length = %d, want %d", got, maxTimesPerRoute)
	}
	if got := len(n.RouteTimes["2"]); got != 1 {
		t.Fatalf("RouteTimes[2] length = %d, want 1", got)
	}
	// All nine records still get their own sentence.
	if got := strings.Count(n.Speech, "heading to"); got != 9 {
		t.Fatalf("narrated sentences = %d, want 9", got)
	}
}

func TestFailureNarrationText(t *testing.T) {
	n := FailureNarration()
	want := "Sorry there was an error contacting the bus service"
	if n.Speech != want {
		t.Fatalf("Speech = %q, want %q", n.Speech, want)
	}
	if n.Card != want {
		t.Fatalf("Card = %q, want %q", n.Card, want)
	}
}
