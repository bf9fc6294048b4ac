package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TurnKind classifies an inbound turn after boundary validation.
type TurnKind string

const (
	KindSessionStarted TurnKind = "session_started"
	KindSessionEnded   TurnKind = "session_ended"
	KindLaunch         TurnKind = "launch"
	KindIntent         TurnKind = "intent"
)

// Intent is the closed set of intent names the skill understands. The
// AMAZON.* names are a platform contract and must match the published
// interaction model bit-for-bit.
type Intent string

const (
	IntentOneshotBus Intent = "OneshotBusIntent"
	IntentDialogBus  Intent = "DialogBusIntent"
	IntentHelp       Intent = "AMAZON.HelpIntent"
	IntentStop       Intent = "AMAZON.StopIntent"
	IntentCancel     Intent = "AMAZON.CancelIntent"
)

// SlotStop names the single slot the skill requires.
const SlotStop = "Stop"

// Turn is one validated inbound event. Slots map slot names to raw values;
// a nil value means the platform sent the slot without a resolved value.
type Turn struct {
	Kind       TurnKind
	Intent     Intent
	Slots      map[string]*string
	SessionID  string
	UserID     string
	RequestID  string
	NewSession bool
	Attributes map[string]any
}

// UnknownIntentError reports an intent name outside the closed set. It is a
// handled condition at the host boundary, never a crash.
type UnknownIntentError struct {
	Name string
}

func (e *UnknownIntentError) Error() string {
	return fmt.Sprintf("unknown intent %q", e.Name)
}

// RequestEnvelope is the host runtime's inbound wire format.
type RequestEnvelope struct {
	Version string          `json:"version"`
	Session SessionEnvelope `json:"session"`
	Request RequestBody     `json:"request"`
}

type SessionEnvelope struct {
	SessionID  string         `json:"sessionId"`
	New        bool           `json:"new"`
	Attributes map[string]any `json:"attributes,omitempty"`
	User       UserEnvelope   `json:"user"`
}

type UserEnvelope struct {
	UserID string `json:"userId"`
}

type RequestBody struct {
	Type      string      `json:"type"`
	RequestID string      `json:"requestId"`
	Intent    *IntentBody `json:"intent,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

type IntentBody struct {
	Name  string              `json:"name"`
	Slots map[string]SlotBody `json:"slots,omitempty"`
}

type SlotBody struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

// Request type discriminators on the wire.
const (
	requestTypeLaunch         = "LaunchRequest"
	requestTypeIntent         = "IntentRequest"
	requestTypeSessionStarted = "SessionStartedRequest"
	requestTypeSessionEnded   = "SessionEndedRequest"
)

// ParseTurn validates a raw request envelope into a typed Turn. Unknown
// intent names and unknown request types come back as typed errors so the
// caller can answer the host without crashing.
func ParseTurn(raw []byte) (Turn, error) {
	var env RequestEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Turn{}, fmt.Errorf("invalid envelope: %w", err)
	}
	return TurnFromEnvelope(env)
}

// TurnFromEnvelope applies boundary validation to an already-decoded envelope.
func TurnFromEnvelope(env RequestEnvelope) (Turn, error) {
	if env.Session.SessionID == "" {
		return Turn{}, errors.New("invalid envelope: missing sessionId")
	}

	turn := Turn{
		SessionID:  env.Session.SessionID,
		UserID:     env.Session.User.UserID,
		RequestID:  env.Request.RequestID,
		NewSession: env.Session.New,
		Attributes: env.Session.Attributes,
	}

	switch env.Request.Type {
	case requestTypeLaunch:
		turn.Kind = KindLaunch
		return turn, nil
	case requestTypeSessionStarted:
		turn.Kind = KindSessionStarted
		return turn, nil
	case requestTypeSessionEnded:
		turn.Kind = KindSessionEnded
		return turn, nil
	case requestTypeIntent:
		if env.Request.Intent == nil {
			return Turn{}, errors.New("invalid envelope: IntentRequest without intent")
		}
		intent, ok := intentFromName(env.Request.Intent.Name)
		if !ok {
			return Turn{}, &UnknownIntentError{Name: env.Request.Intent.Name}
		}
		turn.Kind = KindIntent
		turn.Intent = intent
		turn.Slots = slotValues(env.Request.Intent.Slots)
		return turn, nil
	default:
		return Turn{}, fmt.Errorf("invalid envelope: unsupported request type %q", env.Request.Type)
	}
}

func intentFromName(name string) (Intent, bool) {
	switch Intent(name) {
	case IntentOneshotBus, IntentDialogBus, IntentHelp, IntentStop, IntentCancel:
		return Intent(name), true
	default:
		return "", false
	}
}

func slotValues(slots map[string]SlotBody) map[string]*string {
	if len(slots) == 0 {
		return nil
	}
	out := make(map[string]*string, len(slots))
	for name, slot := range slots {
		out[name] = slot.Value
	}
	return out
}

// Speech output types on the wire.
const (
	SpeechPlainText = "PlainText"
	SpeechSSML      = "SSML"
)

// ResponseEnvelope is the host runtime's outbound wire format.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          ResponseBody   `json:"response"`
}

type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}
