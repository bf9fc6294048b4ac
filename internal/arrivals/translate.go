package arrivals

import (
	"fmt"
	"strings"
)

// Narration is the rendered result of one feed translation: speech text and
// a card body, each a sequence of newline-terminated sentences. The two are
// identical here; the renderer flattens newlines for spoken output only.
type Narration struct {
	Speech string
	Card   string

	// RouteTimes groups narrated arrival times by route, capped at
	// maxTimesPerRoute, for a future card breakdown. It never feeds back
	// into the speech text and is scoped to this single translation.
	RouteTimes map[string][]string
}

const maxTimesPerRoute = 5

// Known headsign abbreviations expanded before narration.
var headsignExpansions = map[string]string{
	"UH Manoa": "University of Hawaii Manoa",
}

// FailureNarration is the fixed text for transport-level fetch failures.
func FailureNarration() Narration {
	const text = "Sorry there was an error contacting the bus service"
	return Narration{Speech: text, Card: text, RouteTimes: map[string][]string{}}
}

// Translate renders a deserialized feed into narration sentences, in feed
// order, with the fallback sentences defined for empty and absent arrivals.
func Translate(feed Feed) Narration {
	routeTimes := make(map[string][]string)

	if feed.Arrivals == nil {
		text := fmt.Sprintf("Sorry, no arrivals found for stop %s. Are you sure this is a valid stop?\n", feed.Stop)
		return Narration{Speech: text, Card: text, RouteTimes: routeTimes}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the arrivals for bus stop %s.\n", feed.Stop)

	narrated := 0
	canceledSeen := false
	for _, rec := range feed.Arrivals {
		if rec.Cancellation == Canceled {
			canceledSeen = true
			continue
		}

		clause := "as scheduled"
		if rec.EstimatedByGPS {
			clause = "estimated by GPS"
		}
		fmt.Fprintf(&b, "Route %s heading to %s arriving at %s %s.", rec.Route, expandHeadsign(rec.Headsign), rec.StopTime, clause)
		if rec.Cancellation == NoLongerCanceled {
			b.WriteString(" This arrival was previously canceled but is no longer.")
		}
		b.WriteString("\n")

		if times := routeTimes[rec.Route]; len(times) < maxTimesPerRoute {
			routeTimes[rec.Route] = append(times, rec.StopTime)
		}
		narrated++
	}

	// Evaluated once after the full scan so a feed of many canceled rows
	// yields a single fallback sentence.
	if narrated == 0 {
		if canceledSeen {
			b.WriteString("Sorry, only canceled arrivals were found.\n")
		} else {
			b.WriteString("Sorry, no arrivals were returned.\n")
		}
	}

	text := b.String()
	return Narration{Speech: text, Card: text, RouteTimes: routeTimes}
}

func expandHeadsign(headsign string) string {
	if full, ok := headsignExpansions[headsign]; ok {
		return full
	}
	return headsign
}
