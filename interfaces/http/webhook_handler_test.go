package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"vidmarket/domain/model"
)

const testWebhookSecret = "whsec_test_secret"

type stubReconcileUsecase struct {
	settled      []string
	failed       []string
	reaffirmed   []string
	accounts     []string
	deauthorized []string
	err          error
}

func (s *stubReconcileUsecase) SettlePayment(ctx context.Context, id string) error {
	s.settled = append(s.settled, id)
	return s.err
}

func (s *stubReconcileUsecase) FailPayment(ctx context.Context, id string) error {
	s.failed = append(s.failed, id)
	return s.err
}

func (s *stubReconcileUsecase) ReaffirmProcessing(ctx context.Context, id string) error {
	s.reaffirmed = append(s.reaffirmed, id)
	return s.err
}

func (s *stubReconcileUsecase) UpdateAccountStatus(ctx context.Context, acctID string, charges, payouts bool, reason string) error {
	s.accounts = append(s.accounts, fmt.Sprintf("%s/%v/%v/%s", acctID, charges, payouts, reason))
	return s.err
}

func (s *stubReconcileUsecase) DeauthorizeAccount(ctx context.Context, acctID string) error {
	s.deauthorized = append(s.deauthorized, acctID)
	return s.err
}

type stubEventStore struct {
	saved []*model.WebhookEvent
}

func (s *stubEventStore) Save(ctx context.Context, event *model.WebhookEvent) error {
	s.saved = append(s.saved, event)
	return nil
}

func signPayload(payload string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookRouter(reconcile *stubReconcileUsecase, store *stubEventStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var handler IWebhookHandler
	if store != nil {
		handler = NewWebhookHandler(reconcile, store, testWebhookSecret)
	} else {
		handler = NewWebhookHandler(reconcile, nil, testWebhookSecret)
	}
	router.POST("/webhooks/payment", handler.HandleStripe)
	return router
}

func postEvent(t *testing.T, router *gin.Engine, payload, signature string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestHandleStripe_PaymentSucceeded(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	store := &stubEventStore{}
	router := newWebhookRouter(reconcile, store)

	payload := `{"id":"evt_1","api_version":"2023-10-16","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"pi_1"}, reconcile.settled)

	require.Len(t, store.saved, 1)
	require.Equal(t, "stripe", store.saved[0].Provider)
	require.Equal(t, "evt_1", store.saved[0].EventID)
	require.Equal(t, "payment_intent.succeeded", store.saved[0].EventType)
}

func TestHandleStripe_PaymentFailed(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_2","api_version":"2023-10-16","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2"}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"pi_2"}, reconcile.failed)
}

func TestHandleStripe_Processing(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_3","api_version":"2023-10-16","type":"payment_intent.processing","data":{"object":{"id":"pi_3"}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"pi_3"}, reconcile.reaffirmed)
}

func TestHandleStripe_AccountUpdated(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_4","api_version":"2023-10-16","type":"account.updated","data":{"object":{"id":"acct_1","charges_enabled":true,"payouts_enabled":false,"requirements":{"disabled_reason":"requirements.past_due"}}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"acct_1/true/false/requirements.past_due"}, reconcile.accounts)
}

func TestHandleStripe_AccountDeauthorized(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_5","api_version":"2023-10-16","type":"account.application.deauthorized","account":"acct_1","data":{"object":{"id":"ca_123"}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"acct_1"}, reconcile.deauthorized)
}

func TestHandleStripe_MissingSignature(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_6","type":"payment_intent.succeeded","data":{"object":{"id":"pi_6"}}}`
	w := postEvent(t, router, payload, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, reconcile.settled)
}

func TestHandleStripe_TamperedPayloadRejected(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_7","type":"payment_intent.succeeded","data":{"object":{"id":"pi_7"}}}`
	signature := signPayload(payload, time.Now())
	tampered := strings.Replace(payload, "pi_7", "pi_8", 1)

	w := postEvent(t, router, tampered, signature)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, reconcile.settled)
}

func TestHandleStripe_StaleSignatureRejected(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_8","type":"payment_intent.succeeded","data":{"object":{"id":"pi_8"}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now().Add(-time.Hour)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, reconcile.settled)
}

func TestHandleStripe_UnknownEventAcknowledged(t *testing.T) {
	reconcile := &stubReconcileUsecase{}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_9","api_version":"2023-10-16","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, reconcile.settled)
	require.Empty(t, reconcile.failed)
}

func TestHandleStripe_ReconcilerFaultStillAcknowledged(t *testing.T) {
	reconcile := &stubReconcileUsecase{err: model.ErrReconciliationFault}
	router := newWebhookRouter(reconcile, nil)

	payload := `{"id":"evt_10","api_version":"2023-10-16","type":"payment_intent.succeeded","data":{"object":{"id":"pi_10"}}}`
	w := postEvent(t, router, payload, signPayload(payload, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"pi_10"}, reconcile.settled)
}
