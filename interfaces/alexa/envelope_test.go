package alexa

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vending-backend/application/dialog"
	"vending-backend/domain/vending"
	"vending-backend/tests/mocks"
)

func TestDecodeTurn_IntentRequest(t *testing.T) {
	env := RequestEnvelope{
		Version: "1.0",
		Session: Session{
			SessionID:  "sess-1",
			Attributes: dialog.Session{PendingProduct: "Cola"},
		},
		Request: Request{
			Type:      dialog.RequestTypeIntent,
			RequestID: "req-1",
			Intent: &Intent{
				Name:               "BuyIntent",
				ConfirmationStatus: "CONFIRMED",
				Slots: map[string]Slot{
					"product": {Name: "product", Value: "Chips"},
					"age":     {Name: "age"},
				},
			},
		},
	}

	in := DecodeTurn(env)

	assert.Equal(t, dialog.IntentBuy, in.Kind)
	assert.Equal(t, "BuyIntent", in.RawIntent)
	assert.Equal(t, dialog.ConfirmationConfirmed, in.Confirmation)
	assert.Equal(t, "Chips", in.Slot(dialog.SlotProduct))
	assert.Empty(t, in.Slot(dialog.SlotAge), "empty slot values are dropped")
	assert.Equal(t, "Cola", in.Session.PendingProduct)
	assert.Equal(t, "req-1", in.RequestID)
}

func TestDecodeTurn_LaunchRequestWithoutIntent(t *testing.T) {
	env := RequestEnvelope{
		Version: "1.0",
		Request: Request{Type: dialog.RequestTypeLaunch},
	}

	in := DecodeTurn(env)

	assert.Equal(t, dialog.IntentLaunch, in.Kind)
	assert.Equal(t, dialog.ConfirmationNone, in.Confirmation)
	assert.NotEmpty(t, in.RequestID, "missing request id gets generated")
}

func TestEncodeOutcome_FullResponse(t *testing.T) {
	env := EncodeOutcome(dialog.TurnOutcome{
		Speech:   "It costs 1.50 €.",
		Reprompt: "Which product do you want?",
		Delegate: &dialog.Directive{
			Intent: "consent",
			Slots:  map[string]string{"product": "Cola"},
		},
		Card: &dialog.Card{
			Title:    "Cola",
			Text:     "1.50 €",
			ImageURL: "https://img.example/cola.png",
		},
		Session: dialog.Session{PendingProduct: "Cola"},
	})

	assert.Equal(t, "1.0", env.Version)
	assert.Equal(t, "Cola", env.SessionAttributes.PendingProduct)

	resp := env.Response
	require.NotNil(t, resp.OutputSpeech)
	assert.Equal(t, "PlainText", resp.OutputSpeech.Type)
	assert.Equal(t, "It costs 1.50 €.", resp.OutputSpeech.Text)
	require.NotNil(t, resp.Reprompt)
	assert.Equal(t, "Which product do you want?", resp.Reprompt.OutputSpeech.Text)

	require.NotNil(t, resp.Card)
	assert.Equal(t, "Standard", resp.Card.Type)
	require.NotNil(t, resp.Card.Image)
	assert.Equal(t, "https://img.example/cola.png", resp.Card.Image.LargeImageURL)

	require.Len(t, resp.Directives, 1)
	assert.Equal(t, "Dialog.Delegate", resp.Directives[0].Type)
	require.NotNil(t, resp.Directives[0].UpdatedIntent)
	assert.Equal(t, "consent", resp.Directives[0].UpdatedIntent.Name)
	assert.Equal(t, "Cola", resp.Directives[0].UpdatedIntent.Slots["product"].Value)

	assert.False(t, resp.ShouldEndSession)
}

func TestEncodeOutcome_EndSessionWithoutSpeech(t *testing.T) {
	env := EncodeOutcome(dialog.TurnOutcome{EndSession: true})

	assert.Nil(t, env.Response.OutputSpeech)
	assert.Nil(t, env.Response.Card)
	assert.Empty(t, env.Response.Directives)
	assert.True(t, env.Response.ShouldEndSession)
}

type noopRecommender struct{}

func (noopRecommender) Recommend(ctx context.Context, userID int64, now time.Time) *vending.Product {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	machine := dialog.NewStateMachine(new(mocks.MockStore), new(mocks.MockFaceGateway), noopRecommender{}, nil)
	return NewRouter(machine, nil, nil, nil).Setup()
}

func TestRouter_HandleTurnRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(RequestEnvelope{
		Version: "1.0",
		Request: Request{
			Type:      dialog.RequestTypeIntent,
			RequestID: "req-42",
			Intent:    &Intent{Name: "SomeMadeUpIntent"},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alexa", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var env ResponseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Response.OutputSpeech)
	assert.Contains(t, env.Response.OutputSpeech.Text, "SomeMadeUpIntent")
	assert.Equal(t, "unknown", env.SessionAttributes.LastIntent)
}

func TestRouter_RejectsMalformedEnvelope(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alexa", bytes.NewBufferString("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RejectsEnvelopeWithoutRequestType(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alexa", bytes.NewBufferString(`{"version":"1.0","request":{}}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
