package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"vidmarket/domain/dto"
	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
	"vidmarket/infrastructure/utils"
	"vidmarket/usecase"
)

const maxWebhookBody = 65536

type IWebhookHandler interface {
	HandleStripe(c *gin.Context)
}

type WebhookHandler struct {
	reconcileUsecase usecase.IReconcileUsecase
	eventStore       repository.IWebhookEventStore
	webhookSecret    string
}

func NewWebhookHandler(reconcileUsecase usecase.IReconcileUsecase, eventStore repository.IWebhookEventStore, webhookSecret string) IWebhookHandler {
	return &WebhookHandler{
		reconcileUsecase: reconcileUsecase,
		eventStore:       eventStore,
		webhookSecret:    webhookSecret,
	}
}

// HandleStripe verifies the signature, then acknowledges with 200 no matter
// what reconciliation does: the provider retries on non-2xx, and every
// transition is idempotent, so redelivery is the safety net for our own
// transient failures, not for bad requests.
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while reading webhook body")
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Unreadable payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: model.ErrSignatureInvalid.Error()})
		return
	}

	h.audit(c, payload, event)
	h.dispatch(c, event)

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Success"})
}

func (h *WebhookHandler) dispatch(c *gin.Context, event stripe.Event) {
	ctx := c.Request.Context()
	log := logger.GetLogger().WithField("eventId", event.ID).WithField("eventType", event.Type)

	var err error
	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err = json.Unmarshal(event.Data.Raw, &pi); err == nil {
			err = h.reconcileUsecase.SettlePayment(ctx, pi.ID)
		}
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err = json.Unmarshal(event.Data.Raw, &pi); err == nil {
			err = h.reconcileUsecase.FailPayment(ctx, pi.ID)
		}
	case "payment_intent.processing":
		var pi stripe.PaymentIntent
		if err = json.Unmarshal(event.Data.Raw, &pi); err == nil {
			err = h.reconcileUsecase.ReaffirmProcessing(ctx, pi.ID)
		}
	case "account.updated":
		var acct stripe.Account
		if err = json.Unmarshal(event.Data.Raw, &acct); err == nil {
			disabledReason := ""
			if acct.Requirements != nil {
				disabledReason = string(acct.Requirements.DisabledReason)
			}
			err = h.reconcileUsecase.UpdateAccountStatus(ctx, acct.ID, acct.ChargesEnabled, acct.PayoutsEnabled, disabledReason)
		}
	case "account.application.deauthorized":
		err = h.reconcileUsecase.DeauthorizeAccount(ctx, event.Account)
	default:
		log.Info("Ignoring unhandled event type")
		return
	}

	if err != nil {
		// An unknown payment id usually means a foreign or stale event;
		// everything else is a reconciliation fault worth alerting on.
		if errors.Is(err, model.ErrNotFound) {
			log.Warn("Event references an unknown record")
			return
		}
		log.WithField("error", err).Error("Reconciliation failed; relying on provider redelivery")
	}
}

func (h *WebhookHandler) audit(c *gin.Context, payload []byte, event stripe.Event) {
	if h.eventStore == nil {
		return
	}
	record := &model.WebhookEvent{
		Provider:   "stripe",
		EventID:    event.ID,
		EventType:  string(event.Type),
		Payload:    string(payload),
		ReceivedAt: utils.GetCurrentTime(),
	}
	if err := h.eventStore.Save(c.Request.Context(), record); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed auditing webhook event")
	}
}
