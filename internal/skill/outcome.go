package skill

// OutcomeKind tags the dialog outcome union.
type OutcomeKind string

const (
	// OutcomeNone is produced for lifecycle notifications that take no reply.
	OutcomeNone OutcomeKind = "none"
	// OutcomeAsk keeps the session open and plays the reprompt on silence.
	OutcomeAsk OutcomeKind = "ask"
	// OutcomeTell ends the session, optionally attaching a card.
	OutcomeTell OutcomeKind = "tell"
)

// Outcome is the single dialog result of one dispatched turn, and the only
// type the response renderer accepts.
type Outcome struct {
	Kind     OutcomeKind
	Speech   string
	Reprompt string
	Card     string
}

func Ask(speech, reprompt string) Outcome {
	return Outcome{Kind: OutcomeAsk, Speech: speech, Reprompt: reprompt}
}

func Tell(speech, card string) Outcome {
	return Outcome{Kind: OutcomeTell, Speech: speech, Card: card}
}
