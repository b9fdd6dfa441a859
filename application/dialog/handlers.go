package dialog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vending-backend/application/ports"
	"vending-backend/domain/vending"
	"vending-backend/pkg/speech"
)

// Spoken lines. Kept as constants so the scenario tests pin the exact text.
const (
	phraseNotSold            = "Sorry, we don't sell this product."
	phraseServiceUnavailable = "I'm sorry, I can't reach the vending machine services right now. Please try again in a moment."
	phraseNoConfirmation     = "I didn't get a confirmation. Please say yes or no."
	phraseAdvice             = "We offer drinks and snacks. Are you hungry or thirsty?"
	phraseHelp               = "You can say hello to me! How can I help?"
	phraseGoodbye            = "Goodbye!"
	phraseStopConfirmed      = "Okay, I return your money."
	phraseStopDenied         = "Then thank you for your purchase! Come back!"
	phraseConsentDenied      = "It's a pity! Then choose something else."
	phraseEnrollDenied       = "It's a pity. Then I can't provide personal recommendations for you. But you still can buy something. Are you hungry or thirsty?"
	phraseProfileDenied      = "It's a pity. You can try again if you want."
	phraseCameraOffline      = " I couldn't check the camera right now."
)

// handleLaunch opens the session: greet a recognized user with a
// personalized offer, or ask an unknown one for profile-enrollment consent.
func (m *StateMachine) handleLaunch(ctx context.Context, in TurnInput) TurnOutcome {
	user, err := m.currentUser(ctx)
	if err != nil {
		m.logger.Warn("user detection failed at launch", zap.Error(err))
		return TurnOutcome{Speech: phraseServiceUnavailable, Reprompt: phraseServiceUnavailable}
	}

	if user == nil {
		out := TurnOutcome{
			Speech:   "Welcome to our Vending Machine! I don't know you yet.",
			Delegate: &Directive{Intent: intentNameRecordConsent},
		}
		out.Reprompt = out.Speech
		return out
	}

	greeting := fmt.Sprintf("Hi %s! Welcome to our Vending Machine!", user.Name)

	if product := m.recommender.Recommend(ctx, user.ID, m.now()); product != nil {
		out := TurnOutcome{
			Speech:   greeting + fmt.Sprintf(" I think you often chose %s at this time.", product.Name),
			Delegate: consentDirective(product.Name),
			Session:  Session{PendingProduct: product.Name},
		}
		out.Reprompt = out.Speech
		return out
	}

	// No suggestion available: fall through to the emotion-aware greeting.
	out := TurnOutcome{Speech: greeting + m.emotionRemark(ctx)}
	out.Reprompt = out.Speech
	out.Card = &Card{
		Title: "Welcome to our vending machine!",
		Text:  `You can say "I am hungry" or choose a specific product. For advice you can say "I want to buy something".`,
	}
	return out
}

// emotionRemark turns the detected expression into a side remark. Detector
// trouble is spoken, not swallowed, but does not abort the greeting.
func (m *StateMachine) emotionRemark(ctx context.Context) string {
	emotion, err := m.face.DetectEmotion(ctx)
	if err != nil {
		m.logger.Warn("emotion detection failed", zap.Error(err))
		return phraseCameraOffline
	}

	switch emotion {
	case vending.EmotionHappy:
		return " Looks like you are very happy today!"
	case vending.EmotionAngry:
		return " I think you're angry! Tell me about your secrets!"
	case vending.EmotionSad:
		return " You look a bit down!"
	case vending.EmotionSurprised:
		return " Why are you surprised? What happened?"
	default:
		return ""
	}
}

// handleBuy answers a direct purchase request: price line, cash note for
// unknown users, consent delegation, display card when an image exists.
func (m *StateMachine) handleBuy(ctx context.Context, in TurnInput) TurnOutcome {
	productName := in.Slot(SlotProduct)
	product, err := m.store.ProductByName(ctx, productName)
	if err != nil {
		m.logger.Warn("product lookup failed", zap.String("product", productName), zap.Error(err))
		return TurnOutcome{Speech: phraseServiceUnavailable}
	}
	if product == nil {
		return TurnOutcome{Speech: phraseNotSold}
	}

	out := TurnOutcome{
		Speech:   fmt.Sprintf("It costs %.2f €. ", product.Price),
		Delegate: consentDirective(product.Name),
		Session:  Session{PendingProduct: product.Name},
	}

	user, err := m.currentUser(ctx)
	if err != nil {
		m.logger.Warn("user detection failed at buy", zap.Error(err))
	}
	if user == nil {
		out.Speech += "As you don't have a profile yet, you have to pay with cash. "
	}

	if product.ImageURL != "" {
		out.Card = &Card{
			Title:    product.Name,
			Text:     fmt.Sprintf("Price: %.2f\nBrand: %s", product.Price, product.Brand),
			ImageURL: product.ImageURL,
		}
	}
	return out
}

// handleAdvice offers the two category branches and asks back.
func (m *StateMachine) handleAdvice(in TurnInput) TurnOutcome {
	return TurnOutcome{Speech: phraseAdvice, Reprompt: phraseAdvice}
}

// handleCategoryOfDecision enumerates the products of the chosen category,
// prefixed with an emotion-matched pick when the camera sees a mood. The
// category fetch and the emotion fetch are independent, so they run
// concurrently.
func (m *StateMachine) handleCategoryOfDecision(ctx context.Context, in TurnInput) TurnOutcome {
	category := in.Slot(SlotCategory)
	if category == "" {
		return TurnOutcome{Speech: phraseAdvice, Reprompt: phraseAdvice}
	}

	type productsResult struct {
		products []vending.Product
		err      error
	}
	type emotionResult struct {
		emotion vending.Emotion
		err     error
	}

	productsCh := make(chan productsResult, 1)
	emotionCh := make(chan emotionResult, 1)
	go func() {
		p, err := m.store.ProductsByCategory(ctx, category)
		productsCh <- productsResult{p, err}
	}()
	go func() {
		e, err := m.face.DetectEmotion(ctx)
		emotionCh <- emotionResult{e, err}
	}()
	pr := <-productsCh
	er := <-emotionCh

	if pr.err != nil {
		m.logger.Warn("category fetch failed", zap.String("category", category), zap.Error(pr.err))
		return TurnOutcome{Speech: phraseServiceUnavailable}
	}
	if len(pr.products) == 0 {
		return TurnOutcome{Speech: fmt.Sprintf("Sorry, we don't have any %s right now.", category)}
	}

	names := make([]string, len(pr.products))
	for i, p := range pr.products {
		names[i] = p.Name
	}
	productsStr := speech.JoinNames(names)

	out := TurnOutcome{}
	emotion := er.emotion
	if er.err != nil {
		m.logger.Warn("emotion detection failed", zap.Error(er.err))
		emotion = vending.EmotionUndefined
		out.Speech += phraseCameraOffline + " "
	}

	if m.emotionOffers.Load() && emotion.Known() && emotion != vending.EmotionNeutral {
		if picks := m.emotionPicks(ctx, category, emotion); picks != "" {
			if emotion == vending.EmotionSad {
				out.Speech += "You look a bit down. "
			} else {
				out.Speech += fmt.Sprintf("You look %s. ", emotion)
			}
			out.Speech += fmt.Sprintf("I think you need this: %s. Additionally, we offer the following %s: %s. Which do you choose?",
				picks, category, productsStr)
			out.Reprompt = out.Speech
			out.Card = &Card{Title: fmt.Sprintf("We offer the following %s:", category), Text: productsStr}
			return out
		}
	}

	out.Speech += fmt.Sprintf("We offer the following %s: %s. Which do you choose?", category, productsStr)
	out.Reprompt = out.Speech
	out.Card = &Card{Title: fmt.Sprintf("We offer the following %s:", category), Text: productsStr}
	return out
}

// emotionPicks returns the spoken list of emotion-matched products, empty
// when there are none or the fetch fails.
func (m *StateMachine) emotionPicks(ctx context.Context, category string, emotion vending.Emotion) string {
	products, err := m.store.ProductsByCategoryAndEmotion(ctx, category, emotion)
	if err != nil {
		m.logger.Warn("emotion product fetch failed", zap.Error(err))
		return ""
	}
	if len(products) == 0 {
		return ""
	}
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return speech.JoinNames(names)
}

// handlePrice answers a price inquiry without starting a purchase.
func (m *StateMachine) handlePrice(ctx context.Context, in TurnInput) TurnOutcome {
	productName := in.Slot(SlotProduct)
	product, err := m.store.ProductByName(ctx, productName)
	if err != nil {
		m.logger.Warn("price lookup failed", zap.String("product", productName), zap.Error(err))
		return TurnOutcome{Speech: phraseServiceUnavailable}
	}
	if product == nil {
		return TurnOutcome{Speech: phraseNotSold}
	}
	return TurnOutcome{Speech: fmt.Sprintf("It costs %.2f €. ", product.Price)}
}

// handleConsent closes the purchase flow: a confirmation records the order
// and says a category-specific farewell, a denial sends the user back to
// browsing. Anything else is answered with the safe default instead of an
// uninitialized response.
func (m *StateMachine) handleConsent(ctx context.Context, in TurnInput) TurnOutcome {
	switch in.Confirmation {
	case ConfirmationDenied:
		return TurnOutcome{Speech: phraseConsentDenied, Reprompt: phraseConsentDenied}
	case ConfirmationConfirmed:
		return m.completePurchase(ctx, in)
	default:
		return TurnOutcome{Speech: phraseNoConfirmation, Reprompt: phraseNoConfirmation}
	}
}

func (m *StateMachine) completePurchase(ctx context.Context, in TurnInput) TurnOutcome {
	productName := in.Slot(SlotProduct)
	if productName == "" {
		productName = in.Session.PendingProduct
	}

	product, err := m.store.ProductByName(ctx, productName)
	if err != nil {
		m.logger.Warn("product lookup failed at purchase", zap.String("product", productName), zap.Error(err))
		return TurnOutcome{Speech: phraseServiceUnavailable}
	}
	if product == nil {
		return TurnOutcome{Speech: phraseNotSold}
	}

	// A camera outage must not block a confirmed purchase; it just becomes
	// an anonymous cash sale.
	var userID int64
	user, err := m.currentUser(ctx)
	if err != nil {
		m.logger.Warn("user detection failed at purchase, recording anonymously", zap.Error(err))
	} else if user != nil {
		userID = user.ID
	}

	if err := m.store.RecordOrder(ctx, product.ID, userID); err != nil {
		m.logger.Error("order persist failed", zap.Int64("product_id", product.ID), zap.Error(err))
		return TurnOutcome{Speech: "I'm sorry, I couldn't record your purchase. Please try again."}
	}

	farewell := "Bon appetit"
	if m.isDrink(ctx, product.ID) {
		farewell = "Cheers"
	}
	return TurnOutcome{
		Speech:     fmt.Sprintf("You bought the %s. %s!", product.Name, farewell),
		EndSession: true,
	}
}

func (m *StateMachine) isDrink(ctx context.Context, productID int64) bool {
	categories, err := m.store.CategoriesOfProduct(ctx, productID)
	if err != nil {
		m.logger.Warn("category lookup failed", zap.Int64("product_id", productID), zap.Error(err))
		return false
	}
	for _, c := range categories {
		if c.Name == vending.CategoryDrink {
			return true
		}
	}
	return false
}

// handleRecordConsent reacts to the profile-enrollment question asked at
// launch for unknown users.
func (m *StateMachine) handleRecordConsent(in TurnInput) TurnOutcome {
	switch in.Confirmation {
	case ConfirmationConfirmed:
		return TurnOutcome{Delegate: &Directive{Intent: intentNameRecordFace}}
	case ConfirmationDenied:
		return TurnOutcome{Speech: phraseEnrollDenied, Reprompt: phraseEnrollDenied}
	default:
		return TurnOutcome{Speech: phraseNoConfirmation, Reprompt: phraseNoConfirmation}
	}
}

// handleRecordFace runs the actual profile training once the user confirmed
// name and age. Training failure keeps the user in the same logical step.
func (m *StateMachine) handleRecordFace(ctx context.Context, in TurnInput) TurnOutcome {
	switch in.Confirmation {
	case ConfirmationDenied:
		return TurnOutcome{Speech: phraseProfileDenied, Reprompt: phraseProfileDenied}
	case ConfirmationConfirmed:
		// handled below
	default:
		return TurnOutcome{Speech: phraseNoConfirmation, Reprompt: phraseNoConfirmation}
	}

	name := in.Slot(SlotName)
	if name == "" {
		name = in.Session.PendingUserName
	}
	if name == "" {
		return TurnOutcome{Speech: "I didn't catch your name. Please try again.", Reprompt: phraseNoConfirmation}
	}

	ok, err := m.face.SetProfileMode(ctx, ports.ProfileConfig{TrainProfile: name})
	if err != nil || !ok {
		if err != nil {
			m.logger.Warn("profile training failed", zap.String("name", name), zap.Error(err))
		}
		return TurnOutcome{
			Speech:   "I'm sorry, your profile couldn't be saved. Try again!",
			Reprompt: "Do you want to try saving your profile again?",
			Session:  Session{PendingUserName: name},
		}
	}

	return TurnOutcome{
		Speech:   fmt.Sprintf("I saved your profile, %s. What do you want to buy?", name),
		Delegate: &Directive{Intent: intentNameAdvice},
	}
}

// handleAskToRememberFace answers "do you remember me?".
func (m *StateMachine) handleAskToRememberFace(ctx context.Context, in TurnInput) TurnOutcome {
	user, err := m.currentUser(ctx)
	if err != nil {
		m.logger.Warn("user detection failed", zap.Error(err))
		return TurnOutcome{Speech: phraseServiceUnavailable, Reprompt: phraseServiceUnavailable}
	}

	if user == nil {
		out := TurnOutcome{
			Speech:   "Sorry, I don't know you. Do you want that I remember you the next time?",
			Delegate: &Directive{Intent: intentNameRecordConsent},
		}
		out.Reprompt = out.Speech
		return out
	}

	product := m.recommender.Recommend(ctx, user.ID, m.now())
	if product == nil {
		out := TurnOutcome{Speech: fmt.Sprintf("Of course %s. But I don't have a suggestion for you yet.", user.Name)}
		out.Reprompt = out.Speech
		return out
	}

	out := TurnOutcome{
		Speech:   fmt.Sprintf("Of course %s. I think you often chose %s.", user.Name, product.Name),
		Delegate: consentDirective(product.Name),
		Session:  Session{PendingProduct: product.Name},
	}
	out.Reprompt = out.Speech
	return out
}

// handleStop acknowledges an aborted purchase; a confirmed stop refunds.
func (m *StateMachine) handleStop(in TurnInput) TurnOutcome {
	switch in.Confirmation {
	case ConfirmationConfirmed:
		return TurnOutcome{Speech: phraseStopConfirmed, EndSession: true}
	case ConfirmationDenied:
		return TurnOutcome{Speech: phraseStopDenied, EndSession: true}
	default:
		return TurnOutcome{Speech: phraseNoConfirmation, Reprompt: phraseNoConfirmation}
	}
}

func (m *StateMachine) handleHelp(in TurnInput) TurnOutcome {
	return TurnOutcome{Speech: phraseHelp, Reprompt: phraseHelp}
}

func (m *StateMachine) handleCancel(in TurnInput) TurnOutcome {
	return TurnOutcome{Speech: phraseGoodbye, EndSession: true}
}

// handleReflector is the diagnostic fallback for intents without a handler.
func (m *StateMachine) handleReflector(in TurnInput) TurnOutcome {
	m.logger.Warn("unhandled intent", zap.String("raw_intent", in.RawIntent))
	return TurnOutcome{
		Speech:     fmt.Sprintf("You just triggered %s.", in.RawIntent),
		EndSession: true,
	}
}
