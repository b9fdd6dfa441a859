package dialog

// Confirmation is the tri-state approval signal delivered with a turn.
type Confirmation string

const (
	ConfirmationNone      Confirmation = "NONE"
	ConfirmationConfirmed Confirmation = "CONFIRMED"
	ConfirmationDenied    Confirmation = "DENIED"
)

// Slot names used by the interaction model.
const (
	SlotProduct  = "product"
	SlotCategory = "category_of_product"
	SlotName     = "name"
	SlotAge      = "age"
)

// Session is the small serializable context the host echoes back on every
// turn. The machine owns no durable state; whatever it needs across turns
// must travel through here.
type Session struct {
	// LastIntent is the kind name of the previous turn, for diagnostics.
	LastIntent string `json:"lastIntent,omitempty"`
	// PendingProduct is the product awaiting purchase confirmation.
	PendingProduct string `json:"pendingProduct,omitempty"`
	// PendingUserName is the name awaiting profile-enrollment confirmation.
	PendingUserName string `json:"pendingUserName,omitempty"`
}

// TurnInput is one decoded voice turn.
type TurnInput struct {
	Kind         IntentKind
	RawIntent    string
	Confirmation Confirmation
	Slots        map[string]string
	Session      Session
	RequestID    string
}

// Slot returns a slot value, empty when absent.
func (in TurnInput) Slot(name string) string {
	return in.Slots[name]
}

// Directive instructs the host to continue with a follow-up intent,
// optionally prefilled with slot values.
type Directive struct {
	Intent string
	Slots  map[string]string
}

// Card is optional display content shown on devices with a screen.
type Card struct {
	Title    string
	Text     string
	ImageURL string
}

// TurnOutcome is the machine's full answer for one turn. Every handler
// branch builds its own outcome; there is no shared response state.
type TurnOutcome struct {
	Speech     string
	Reprompt   string
	Delegate   *Directive
	Card       *Card
	Session    Session
	EndSession bool
}
