// Package alexa adapts the voice platform's JSON envelopes onto dialog
// turns and back.
package alexa

import (
	"github.com/google/uuid"

	"vending-backend/application/dialog"
)

// RequestEnvelope is the incoming skill request.
type RequestEnvelope struct {
	Version string  `json:"version" validate:"required"`
	Session Session `json:"session"`
	Request Request `json:"request" validate:"required"`
}

// Session carries the per-conversation attributes the platform echoes back
// on every turn.
type Session struct {
	SessionID  string         `json:"sessionId"`
	New        bool           `json:"new"`
	Attributes dialog.Session `json:"attributes"`
}

// Request is the typed payload of one turn.
type Request struct {
	Type      string  `json:"type" validate:"required"`
	RequestID string  `json:"requestId"`
	Timestamp string  `json:"timestamp"`
	Locale    string  `json:"locale"`
	Intent    *Intent `json:"intent,omitempty"`
}

// Intent names the matched utterance and its slot values.
type Intent struct {
	Name               string          `json:"name"`
	ConfirmationStatus string          `json:"confirmationStatus,omitempty"`
	Slots              map[string]Slot `json:"slots,omitempty"`
}

// Slot is one captured slot value.
type Slot struct {
	Name               string `json:"name"`
	Value              string `json:"value,omitempty"`
	ConfirmationStatus string `json:"confirmationStatus,omitempty"`
}

// ResponseEnvelope is the outgoing skill response.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes dialog.Session `json:"sessionAttributes"`
	Response          Response       `json:"response"`
}

// Response is the spoken and visual payload of one turn.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

// OutputSpeech is plain-text speech.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reprompt is spoken when the user stays silent.
type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// Card is display content for devices with a screen.
type Card struct {
	Type  string     `json:"type"`
	Title string     `json:"title,omitempty"`
	Text  string     `json:"text,omitempty"`
	Image *CardImage `json:"image,omitempty"`
}

// CardImage holds the card artwork URLs.
type CardImage struct {
	SmallImageURL string `json:"smallImageUrl,omitempty"`
	LargeImageURL string `json:"largeImageUrl,omitempty"`
}

// Directive instructs the platform to continue the dialog.
type Directive struct {
	Type          string  `json:"type"`
	UpdatedIntent *Intent `json:"updatedIntent,omitempty"`
}

const (
	responseVersion   = "1.0"
	speechTypePlain   = "PlainText"
	cardTypeStandard  = "Standard"
	directiveDelegate = "Dialog.Delegate"
)

// DecodeTurn maps a request envelope onto a dialog turn. Requests without a
// platform request id get a generated one so every turn stays traceable.
func DecodeTurn(env RequestEnvelope) dialog.TurnInput {
	in := dialog.TurnInput{
		Confirmation: dialog.ConfirmationNone,
		Session:      env.Session.Attributes,
		RequestID:    env.Request.RequestID,
	}
	if in.RequestID == "" {
		in.RequestID = uuid.NewString()
	}

	var intentName string
	if intent := env.Request.Intent; intent != nil {
		intentName = intent.Name
		in.RawIntent = intent.Name
		if intent.ConfirmationStatus != "" {
			in.Confirmation = dialog.Confirmation(intent.ConfirmationStatus)
		}
		for name, slot := range intent.Slots {
			if slot.Value == "" {
				continue
			}
			if in.Slots == nil {
				in.Slots = make(map[string]string, len(intent.Slots))
			}
			in.Slots[name] = slot.Value
		}
	}

	in.Kind = dialog.ParseIntent(env.Request.Type, intentName)
	return in
}

// EncodeOutcome maps a turn outcome onto a response envelope.
func EncodeOutcome(out dialog.TurnOutcome) ResponseEnvelope {
	resp := Response{ShouldEndSession: out.EndSession}

	if out.Speech != "" {
		resp.OutputSpeech = &OutputSpeech{Type: speechTypePlain, Text: out.Speech}
	}
	if out.Reprompt != "" {
		resp.Reprompt = &Reprompt{
			OutputSpeech: OutputSpeech{Type: speechTypePlain, Text: out.Reprompt},
		}
	}
	if out.Card != nil {
		card := &Card{
			Type:  cardTypeStandard,
			Title: out.Card.Title,
			Text:  out.Card.Text,
		}
		if out.Card.ImageURL != "" {
			card.Image = &CardImage{
				SmallImageURL: out.Card.ImageURL,
				LargeImageURL: out.Card.ImageURL,
			}
		}
		resp.Card = card
	}
	if out.Delegate != nil {
		intent := &Intent{
			Name:               out.Delegate.Intent,
			ConfirmationStatus: string(dialog.ConfirmationNone),
		}
		if len(out.Delegate.Slots) > 0 {
			intent.Slots = make(map[string]Slot, len(out.Delegate.Slots))
			for name, value := range out.Delegate.Slots {
				intent.Slots[name] = Slot{Name: name, Value: value}
			}
		}
		resp.Directives = []Directive{{Type: directiveDelegate, UpdatedIntent: intent}}
	}

	return ResponseEnvelope{
		Version:           responseVersion,
		SessionAttributes: out.Session,
		Response:          resp,
	}
}
