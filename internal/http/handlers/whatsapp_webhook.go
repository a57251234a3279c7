package handlers

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/farabiclinic/ai-receptionist/internal/assistant"
	"github.com/farabiclinic/ai-receptionist/pkg/logging"
)

var webhookTracer = otel.Tracer("receptionist.internal.http.whatsapp")

// Conversationalist is the piece of the session manager the webhook needs.
type Conversationalist interface {
	Converse(ctx context.Context, senderID, text string, override *assistant.Language) (string, error)
}

// WhatsAppWebhookHandler receives inbound WhatsApp messages as
// Twilio-style form posts and answers with a TwiML message. Each sender
// number maps to its own conversation session.
type WhatsAppWebhookHandler struct {
	conversations   Conversationalist
	defaultLanguage assistant.Language
	logger          *logging.Logger
}

func NewWhatsAppWebhookHandler(conversations Conversationalist, defaultLanguage assistant.Language, logger *logging.Logger) *WhatsAppWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WhatsAppWebhookHandler{
		conversations:   conversations,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// HandleMessage handles POST /webhooks/whatsapp requests.
func (h *WhatsAppWebhookHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "whatsapp.webhook")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse webhook form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	from := strings.TrimSpace(r.FormValue("From"))
	body := strings.TrimSpace(r.FormValue("Body"))
	if from == "" || body == "" {
		h.logger.Warn("webhook missing From or Body")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("whatsapp.from", from))

	// An explicit Language field switches the session before the turn runs.
	var override *assistant.Language
	if v := r.FormValue("Language"); v != "" {
		if lang, ok := assistant.ParseLanguage(v); ok {
			override = &lang
		}
	}

	reply, err := h.conversations.Converse(ctx, from, body, override)
	if err != nil {
		h.logger.Error("conversation turn failed", "sender_id", from, "error", err)
		span.RecordError(err)
		lang := h.defaultLanguage
		if override != nil {
			lang = *override
		}
		reply = assistant.UnavailableReply(lang)
	}

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(twiml(reply)))
}

// twiml wraps a reply in the minimal messaging response document.
func twiml(message string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(message))
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Message>` + buf.String() + `</Message></Response>`
}
