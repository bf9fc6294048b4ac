package skill

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/mmakana/dabus/internal/arrivals"
	"github.com/mmakana/dabus/internal/observability"
	"github.com/mmakana/dabus/internal/protocol"
	"github.com/mmakana/dabus/internal/session"
	"github.com/mmakana/dabus/internal/turnlog"
)

// Fixed user-facing texts. The slot failure pair is shared bit-for-bit by
// the one-shot and the dialog entry path.
const (
	welcomeSpeech       = "Welcome to DaBus Arrivals. Which stop would you like arrivals for?"
	welcomeReprompt     = "Which stop would you like arrivals for?"
	helpSpeech          = "You can ask for arrivals at any numbered bus stop. Try saying, when is the next bus at stop two fourteen. Which stop would you like arrivals for?"
	slotFailureSpeech   = "Sorry, I did not hear the stop, please say that again."
	slotFailureReprompt = "Please say the stop again."
	goodbyeSpeech       = "Goodbye"
)

// Handler resolves one intent turn into a dialog outcome.
type Handler func(ctx context.Context, turn protocol.Turn, sess *session.Session) (Outcome, error)

// Hooks observe session lifecycle turns. Lifecycle turns produce no reply.
type Hooks struct {
	OnSessionStarted func(turn protocol.Turn)
	OnSessionEnded   func(turn protocol.Turn)
}

// TurnEvent is published to observers after each dispatched turn.
type TurnEvent struct {
	SessionID string      `json:"session_id"`
	Intent    string      `json:"intent"`
	Outcome   OutcomeKind `json:"outcome"`
	Speech    string      `json:"speech,omitempty"`
	TSMs      int64       `json:"ts_ms"`
}

// EventSink receives turn events, e.g. the websocket tap.
type EventSink interface {
	PublishTurn(event TurnEvent)
}

// Dispatcher routes validated turns through a handler table plus lifecycle
// hooks. It processes exactly one turn per call and yields one Outcome.
type Dispatcher struct {
	sessions *session.Manager
	fetcher  arrivals.Fetcher
	store    turnlog.Store
	metrics  *observability.Metrics
	sink     EventSink

	handlers map[protocol.Intent]Handler
	hooks    Hooks
}

func NewDispatcher(sessions *session.Manager, fetcher arrivals.Fetcher, store turnlog.Store, metrics *observability.Metrics, sink EventSink) *Dispatcher {
	d := &Dispatcher{
		sessions: sessions,
		fetcher:  fetcher,
		store:    store,
		metrics:  metrics,
		sink:     sink,
	}
	d.handlers = map[protocol.Intent]Handler{
		protocol.IntentOneshotBus: d.handleStopRequest,
		protocol.IntentDialogBus:  d.handleStopRequest,
		protocol.IntentHelp:       d.handleHelp,
		protocol.IntentStop:       d.handleGoodbye,
		protocol.IntentCancel:     d.handleGoodbye,
	}
	d.hooks = Hooks{
		OnSessionStarted: func(turn protocol.Turn) {
			log.Printf("session started: %s", turn.SessionID)
		},
		OnSessionEnded: func(turn protocol.Turn) {
			log.Printf("session ended: %s", turn.SessionID)
		},
	}
	return d
}

// SetHooks replaces the lifecycle hooks. Nil fields keep the defaults.
func (d *Dispatcher) SetHooks(hooks Hooks) {
	if hooks.OnSessionStarted != nil {
		d.hooks.OnSessionStarted = hooks.OnSessionStarted
	}
	if hooks.OnSessionEnded != nil {
		d.hooks.OnSessionEnded = hooks.OnSessionEnded
	}
}

// HandleTurn dispatches one inbound turn to completion.
func (d *Dispatcher) HandleTurn(ctx context.Context, turn protocol.Turn) (Outcome, error) {
	sess := d.sessions.Ensure(turn.SessionID, turn.UserID)
	d.metrics.ActiveSessions.Set(float64(d.sessions.ActiveCount()))

	switch turn.Kind {
	case protocol.KindSessionStarted:
		d.metrics.SessionEvents.WithLabelValues("started").Inc()
		d.hooks.OnSessionStarted(turn)
		return Outcome{Kind: OutcomeNone}, nil

	case protocol.KindSessionEnded:
		d.metrics.SessionEvents.WithLabelValues("ended").Inc()
		d.hooks.OnSessionEnded(turn)
		_, _ = d.sessions.End(sess.ID)
		d.metrics.ActiveSessions.Set(float64(d.sessions.ActiveCount()))
		return Outcome{Kind: OutcomeNone}, nil

	case protocol.KindLaunch:
		if err := d.sessions.SetPhase(sess.ID, session.PhaseAwaitingStop); err != nil {
			log.Printf("set phase failed: %v", err)
		}
		out := Ask(welcomeSpeech, welcomeReprompt)
		d.finishTurn(ctx, turn, "", out)
		return out, nil

	case protocol.KindIntent:
		handler, ok := d.handlers[turn.Intent]
		if !ok {
			// Boundary validation normally rejects these first; this guards
			// turns constructed in-process.
			return Outcome{}, &protocol.UnknownIntentError{Name: string(turn.Intent)}
		}
		return handler(ctx, turn, sess)

	default:
		return Outcome{}, errors.New("unsupported turn kind")
	}
}

// handleStopRequest serves both OneshotBusIntent and DialogBusIntent: the
// two paths share the validator and the re-prompt pair exactly.
func (d *Dispatcher) handleStopRequest(ctx context.Context, turn protocol.Turn, sess *session.Session) (Outcome, error) {
	stop, err := ValidateStop(turn.Slots[protocol.SlotStop])
	if err != nil {
		var slotErr *SlotError
		if errors.As(err, &slotErr) {
			d.metrics.SlotErrors.WithLabelValues(string(slotErr.Kind)).Inc()
		}
		// Raw slot detail stays in logs; the spoken text is fixed.
		log.Printf("stop slot rejected for session %s: %v", sess.ID, err)

		if err := d.sessions.SetPhase(sess.ID, session.PhaseAwaitingStop); err != nil {
			log.Printf("set phase failed: %v", err)
		}
		out := Ask(slotFailureSpeech, slotFailureReprompt)
		d.finishTurn(ctx, turn, "", out)
		return out, nil
	}

	narration := d.lookupArrivals(ctx, stop)

	stopValue := strconv.Itoa(int(stop))
	if err := d.sessions.SetAttribute(sess.ID, session.AttrLastStop, stopValue); err != nil {
		log.Printf("set attribute failed: %v", err)
	}
	if err := d.sessions.SetPhase(sess.ID, session.PhaseResolved); err != nil {
		log.Printf("set phase failed: %v", err)
	}

	out := Tell(FlattenSpeech(narration.Speech), narration.Card)
	d.finishTurn(ctx, turn, stopValue, out)
	return out, nil
}

// lookupArrivals runs the single fetch+translate of the turn. Fetch errors
// collapse to the fixed failure narration; a feed that parsed but carries no
// arrivals keeps the translator's own, more specific text.
func (d *Dispatcher) lookupArrivals(ctx context.Context, stop arrivals.StopID) arrivals.Narration {
	start := time.Now()
	feed, err := d.fetcher.Fetch(ctx, stop)
	d.metrics.ObserveFetchLatency(time.Since(start))
	if err != nil {
		kind := arrivals.FetchTransport
		var fetchErr *arrivals.FetchError
		if errors.As(err, &fetchErr) {
			kind = fetchErr.Kind
		}
		d.metrics.FetchErrors.WithLabelValues(string(kind)).Inc()
		log.Printf("arrivals fetch failed for stop %d: %v", stop, err)
		return arrivals.FailureNarration()
	}
	return arrivals.Translate(feed)
}

func (d *Dispatcher) handleHelp(ctx context.Context, turn protocol.Turn, _ *session.Session) (Outcome, error) {
	out := Ask(helpSpeech, welcomeReprompt)
	d.finishTurn(ctx, turn, "", out)
	return out, nil
}

func (d *Dispatcher) handleGoodbye(ctx context.Context, turn protocol.Turn, sess *session.Session) (Outcome, error) {
	_, _ = d.sessions.End(sess.ID)
	d.metrics.ActiveSessions.Set(float64(d.sessions.ActiveCount()))
	out := Tell(goodbyeSpeech, "")
	d.finishTurn(ctx, turn, "", out)
	return out, nil
}

func (d *Dispatcher) finishTurn(ctx context.Context, turn protocol.Turn, stop string, out Outcome) {
	intent := intentLabel(turn)
	d.metrics.Turns.WithLabelValues(intent, string(out.Kind)).Inc()

	if d.store != nil {
		err := d.store.SaveTurn(ctx, turnlog.TurnRecord{
			SessionID: turn.SessionID,
			UserID:    turn.UserID,
			Intent:    intent,
			Stop:      stop,
			Outcome:   string(out.Kind),
			Speech:    out.Speech,
		})
		if err != nil {
			log.Printf("turn log save failed: %v", err)
		}
	}

	if d.sink != nil {
		d.sink.PublishTurn(TurnEvent{
			SessionID: turn.SessionID,
			Intent:    intent,
			Outcome:   out.Kind,
			Speech:    out.Speech,
			TSMs:      time.Now().UnixMilli(),
		})
	}
}

func intentLabel(turn protocol.Turn) string {
	if turn.Kind == protocol.KindIntent {
		return string(turn.Intent)
	}
	return string(turn.Kind)
}
