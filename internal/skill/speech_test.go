package skill

import "testing"

func TestFlattenSpeechCollapsesNewlines(t *testing.T) {
	in := "Here are the arrivals for bus stop 214.\nRoute 1 heading to University of Hawaii Manoa arriving at 9:35am estimated by GPS.\n"
	want := "Here are the arrivals for bus stop 214. Route 1 heading to University of Hawaii Manoa arriving at 9:35am estimated by GPS."
	if got := FlattenSpeech(in); got != want {
		t.Fatalf("FlattenSpeech() = %q, want %q", got, want)
	}
}

func TestFlattenSpeechLeavesSSMLVerbatim(t *testing.T) {
	in := "<speak>Route 1 <break time=\"200ms\"/> arriving now.\n</speak>"
	if got := FlattenSpeech(in); got != in {
		t.Fatalf("FlattenSpeech() = %q, want unchanged SSML", got)
	}
}

func TestIsSSML(t *testing.T) {
	if !IsSSML("  <speak>hi</speak>") {
		t.Fatalf("IsSSML() = false for speak payload")
	}
	if IsSSML("plain text with < sign") {
		t.Fatalf("IsSSML() = true for plain text")
	}
}
