// Package dialog implements the multi-turn purchase state machine. Each
// voice turn is one independent Handle invocation: the machine computes the
// next directive from the incoming turn alone and keeps no memory of its
// own between turns.
package dialog

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"vending-backend/application/ports"
	"vending-backend/domain/vending"
)

// Recommender supplies the personalized product suggestion for a user.
// Nil means no suggestion is available; that is not an error.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, now time.Time) *vending.Product
}

// StateMachine drives the purchase, consent and profile-enrollment flows.
type StateMachine struct {
	store       ports.Store
	face        ports.FaceGateway
	recommender Recommender
	logger      *zap.Logger
	now         func() time.Time

	// emotionOffers gates the mood-matched picks; hot-reloadable.
	emotionOffers atomic.Bool
}

// NewStateMachine creates a new dialog state machine
func NewStateMachine(store ports.Store, face ports.FaceGateway, recommender Recommender, logger *zap.Logger) *StateMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &StateMachine{
		store:       store,
		face:        face,
		recommender: recommender,
		logger:      logger,
		now:         time.Now,
	}
	m.emotionOffers.Store(true)
	return m
}

// SetEmotionOffers toggles the mood-matched category picks, e.g. after a
// policy reload.
func (m *StateMachine) SetEmotionOffers(enabled bool) {
	m.emotionOffers.Store(enabled)
}

// WithClock overrides the reference clock. Test hook; production code keeps
// the wall clock.
func (m *StateMachine) WithClock(now func() time.Time) *StateMachine {
	m.now = now
	return m
}

// Handle processes one voice turn and returns the complete outcome for it.
// Every branch below builds and returns its own outcome value; no response
// state is shared across branches or turns.
func (m *StateMachine) Handle(ctx context.Context, in TurnInput) TurnOutcome {
	log := m.logger.With(
		zap.String("intent", in.Kind.String()),
		zap.String("request_id", in.RequestID),
		zap.String("confirmation", string(in.Confirmation)),
	)
	log.Info("handling turn")

	var out TurnOutcome
	switch in.Kind {
	case IntentLaunch:
		out = m.handleLaunch(ctx, in)
	case IntentBuy:
		out = m.handleBuy(ctx, in)
	case IntentAdvice:
		out = m.handleAdvice(in)
	case IntentCategoryOfDecision:
		out = m.handleCategoryOfDecision(ctx, in)
	case IntentPrice:
		out = m.handlePrice(ctx, in)
	case IntentConsent:
		out = m.handleConsent(ctx, in)
	case IntentRecordConsent:
		out = m.handleRecordConsent(in)
	case IntentRecordFace:
		out = m.handleRecordFace(ctx, in)
	case IntentAskToRememberFace:
		out = m.handleAskToRememberFace(ctx, in)
	case IntentStop:
		out = m.handleStop(in)
	case IntentHelp:
		out = m.handleHelp(in)
	case IntentCancel:
		out = m.handleCancel(in)
	case IntentSessionEnded:
		out = TurnOutcome{EndSession: true}
	default:
		out = m.handleReflector(in)
	}

	out.Session.LastIntent = in.Kind.String()
	return out
}

// currentUser resolves the person in front of the machine through the face
// server and the user store. (nil, nil) means nobody is recognized.
func (m *StateMachine) currentUser(ctx context.Context) (*vending.User, error) {
	name, err := m.face.DetectUserName(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	return m.store.UserByName(ctx, name)
}

// consentDirective asks the host to run the purchase-consent intent with
// the product prefilled.
func consentDirective(productName string) *Directive {
	return &Directive{
		Intent: intentNameConsent,
		Slots:  map[string]string{SlotProduct: productName},
	}
}
