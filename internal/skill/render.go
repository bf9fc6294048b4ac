package skill

import "github.com/mmakana/dabus/internal/protocol"

// Renderer assembles the host-facing response envelope from a dialog
// outcome. Speech payloads pass through byte-identical; markup detection
// only selects the output speech type.
type Renderer struct {
	SkillName string
}

func (r Renderer) Render(out Outcome) protocol.ResponseEnvelope {
	env := protocol.ResponseEnvelope{Version: "1.0"}

	switch out.Kind {
	case OutcomeAsk:
		env.Response.OutputSpeech = outputSpeech(out.Speech)
		env.Response.Reprompt = &protocol.Reprompt{OutputSpeech: *outputSpeech(out.Reprompt)}
		env.Response.ShouldEndSession = false
	case OutcomeTell:
		env.Response.OutputSpeech = outputSpeech(out.Speech)
		env.Response.ShouldEndSession = true
		if out.Card != "" {
			env.Response.Card = &protocol.Card{
				Type:    "Simple",
				Title:   r.SkillName,
				Content: out.Card,
			}
		}
	case OutcomeNone:
		// Lifecycle notifications get an empty reply body.
	}

	return env
}

func outputSpeech(text string) *protocol.OutputSpeech {
	if IsSSML(text) {
		return &protocol.OutputSpeech{Type: protocol.SpeechSSML, SSML: text}
	}
	return &protocol.OutputSpeech{Type: protocol.SpeechPlainText, Text: text}
}
