package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farabiclinic/ai-receptionist/internal/assistant"
	"github.com/farabiclinic/ai-receptionist/internal/http/handlers"
	"github.com/farabiclinic/ai-receptionist/pkg/logging"
)

type fixedConversations struct{ reply string }

func (f *fixedConversations) Converse(context.Context, string, string, *assistant.Language) (string, error) {
	return f.reply, nil
}

func newTestRouter() http.Handler {
	webhook := handlers.NewWhatsAppWebhookHandler(
		&fixedConversations{reply: "hello"},
		assistant.LanguageEnglish,
		logging.New("error"),
	)
	return New(&Config{
		Logger:          logging.New("error"),
		WhatsAppWebhook: webhook,
		MetricsHandler:  http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }),
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestMetricsEndpointMounted(t *testing.T) {
	srv := httptest.NewServer(newTestRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestWebhookRoute(t *testing.T) {
	srv := httptest.NewServer(newTestRouter())
	defer srv.Close()

	form := url.Values{"From": {"whatsapp:+1"}, "Body": {"hi"}}
	resp, err := http.Post(srv.URL+"/webhooks/whatsapp", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	srv := httptest.NewServer(newTestRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}
