package dialog

// IntentKind is the closed set of request kinds the state machine handles.
// The voice platform delivers intents as free-form strings; parsing them
// into a tagged kind keeps the dispatch exhaustive and makes adding an
// intent a compile-time-checked change.
type IntentKind int

const (
	// IntentUnknown is the required reflector case for unrecognized intents.
	IntentUnknown IntentKind = iota
	IntentLaunch
	IntentBuy
	IntentAdvice
	IntentCategoryOfDecision
	IntentPrice
	IntentConsent
	IntentRecordConsent
	IntentRecordFace
	IntentAskToRememberFace
	IntentStop
	IntentHelp
	IntentCancel
	IntentSessionEnded
)

// Platform request types that are not intents.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// Wire-level intent names as configured in the interaction model.
const (
	intentNameBuy              = "BuyIntent"
	intentNameAdvice           = "AdviceIntent"
	intentNameCategoryDecision = "category_of_decision"
	intentNamePrice            = "CostsIntent"
	intentNameConsent          = "consent"
	intentNameRecordConsent    = "RecordConsentIntent"
	intentNameRecordFace       = "record_face"
	intentNameAskToRemember    = "ask_to_remember_face"
	intentNameStop             = "StopIntent"
	intentNameHelp             = "AMAZON.HelpIntent"
	intentNameAmazonCancel     = "AMAZON.CancelIntent"
	intentNameAmazonStop       = "AMAZON.StopIntent"
)

// ParseIntent maps a request type and intent name onto the closed kind set.
// Anything unrecognized becomes IntentUnknown and is answered by the
// diagnostic reflector.
func ParseIntent(requestType, intentName string) IntentKind {
	switch requestType {
	case RequestTypeLaunch:
		return IntentLaunch
	case RequestTypeSessionEnded:
		return IntentSessionEnded
	case RequestTypeIntent:
		// fall through to the intent name
	default:
		return IntentUnknown
	}

	switch intentName {
	case intentNameBuy:
		return IntentBuy
	case intentNameAdvice:
		return IntentAdvice
	case intentNameCategoryDecision:
		return IntentCategoryOfDecision
	case intentNamePrice:
		return IntentPrice
	case intentNameConsent:
		return IntentConsent
	case intentNameRecordConsent:
		return IntentRecordConsent
	case intentNameRecordFace:
		return IntentRecordFace
	case intentNameAskToRemember:
		return IntentAskToRememberFace
	case intentNameStop:
		return IntentStop
	case intentNameHelp:
		return IntentHelp
	case intentNameAmazonCancel, intentNameAmazonStop:
		return IntentCancel
	default:
		return IntentUnknown
	}
}

// String returns the canonical name of the kind, used in logs and metrics.
func (k IntentKind) String() string {
	switch k {
	case IntentLaunch:
		return "launch"
	case IntentBuy:
		return "buy"
	case IntentAdvice:
		return "advice"
	case IntentCategoryOfDecision:
		return "category_of_decision"
	case IntentPrice:
		return "price"
	case IntentConsent:
		return "consent"
	case IntentRecordConsent:
		return "record_consent"
	case IntentRecordFace:
		return "record_face"
	case IntentAskToRememberFace:
		return "ask_to_remember_face"
	case IntentStop:
		return "stop"
	case IntentHelp:
		return "help"
	case IntentCancel:
		return "cancel"
	case IntentSessionEnded:
		return "session_ended"
	default:
		return "unknown"
	}
}
