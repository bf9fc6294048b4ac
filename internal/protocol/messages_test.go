package protocol

import (
	"errors"
	"testing"
)

func TestParseTurnLaunch(t *testing.T) {
	raw := []byte(`{
		"version": "1.0",
		"session": {"sessionId": "sess-1", "new": true, "user": {"userId": "user-1"}},
		"request": {"type": "LaunchRequest", "requestId": "req-1"}
	}`)

	turn, err := ParseTurn(raw)
	if err != nil {
		t.Fatalf("ParseTurn() error = %v", err)
	}
	if turn.Kind != KindLaunch {
		t.Fatalf("Kind = %q, want %q", turn.Kind, KindLaunch)
	}
	if turn.SessionID != "sess-1" || turn.UserID != "user-1" || !turn.NewSession {
		t.Fatalf("unexpected turn fields: %+v", turn)
	}
}

func TestParseTurnIntentWithSlot(t *testing.T) {
	raw := []byte(`{
		"version": "1.0",
		"session": {"sessionId": "sess-1", "user": {"userId": "user-1"}},
		"request": {
			"type": "IntentRequest",
			"requestId": "req-2",
			"intent": {"name": "OneshotBusIntent", "slots": {"Stop": {"name": "Stop", "value": "214"}}}
		}
	}`)

	turn, err := ParseTurn(raw)
	if err != nil {
		t.Fatalf("ParseTurn() error = %v", err)
	}
	if turn.Kind != KindIntent || turn.Intent != IntentOneshotBus {
		t.Fatalf("unexpected routing: kind=%q intent=%q", turn.Kind, turn.Intent)
	}
	v, ok := turn.Slots[SlotStop]
	if !ok || v == nil || *v != "214" {
		t.Fatalf("Slots[%q] = %v, want 214", SlotStop, v)
	}
}

func TestParseTurnSlotWithoutValue(t *testing.T) {
	raw := []byte(`{
		"session": {"sessionId": "sess-1"},
		"request": {
			"type": "IntentRequest",
			"requestId": "req-3",
			"intent": {"name": "DialogBusIntent", "slots": {"Stop": {"name": "Stop"}}}
		}
	}`)

	turn, err := ParseTurn(raw)
	if err != nil {
		t.Fatalf("ParseTurn() error = %v", err)
	}
	v, ok := turn.Slots[SlotStop]
	if !ok {
		t.Fatalf("Stop slot missing from parsed turn")
	}
	if v != nil {
		t.Fatalf("slot value = %q, want nil", *v)
	}
}

func TestParseTurnUnknownIntent(t *testing.T) {
	raw := []byte(`{
		"session": {"sessionId": "sess-1"},
		"request": {"type": "IntentRequest", "requestId": "req-4", "intent": {"name": "PlayMusicIntent"}}
	}`)

	_, err := ParseTurn(raw)
	var unknown *UnknownIntentError
	if !errors.As(err, &unknown) {
		t.Fatalf("ParseTurn() error = %v, want UnknownIntentError", err)
	}
	if unknown.Name != "PlayMusicIntent" {
		t.Fatalf("unknown.Name = %q, want %q", unknown.Name, "PlayMusicIntent")
	}
}

func TestParseTurnRejectsMissingSession(t *testing.T) {
	raw := []byte(`{"request": {"type": "LaunchRequest", "requestId": "req-5"}}`)
	if _, err := ParseTurn(raw); err == nil {
		t.Fatalf("ParseTurn() expected error for missing sessionId")
	}
}

func TestParseTurnSessionLifecycle(t *testing.T) {
	for reqType, want := range map[string]TurnKind{
		"SessionStartedRequest": KindSessionStarted,
		"SessionEndedRequest":   KindSessionEnded,
	} {
		raw := []byte(`{
			"session": {"sessionId": "sess-1"},
			"request": {"type": "` + reqType + `", "requestId": "req-6"}
		}`)
		turn, err := ParseTurn(raw)
		if err != nil {
			t.Fatalf("ParseTurn(%s) error = %v", reqType, err)
		}
		if turn.Kind != want {
			t.Fatalf("Kind = %q, want %q", turn.Kind, want)
		}
	}
}
