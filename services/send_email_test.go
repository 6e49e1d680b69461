package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/models"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *EmailSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewEmailSender("re_test", "Portfolio <site@example.com>")
	s.endpoint = srv.URL
	return s
}

func TestFeedbackNotifierSendsEscapedEmail(t *testing.T) {
	var got ResendEmailRequest
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ResendEmailResponse{ID: "email_1"})
	})

	n := NewFeedbackNotifier(sender, "owner@example.com")
	err := n.NotifyFeedback(context.Background(), models.Feedback{Name: "Eve", Feedback: "<script>x</script>", Stars: 5})
	require.NoError(t, err)

	assert.Equal(t, []string{"owner@example.com"}, got.To)
	assert.Equal(t, "Portfolio <site@example.com>", got.From)
	assert.Contains(t, got.Subject, "Eve")
	assert.Contains(t, got.Html, "&lt;script&gt;")
	assert.NotContains(t, got.Html, "<script>")
}

func TestSendEmailSurfacesAPIError(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(ResendErrorResponse{Message: "invalid from address"})
	})

	err := sender.SendEmail(context.Background(), "s", "b", []string{"a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")
	assert.Contains(t, err.Error(), "422")
}

func TestSendEmailRequiresRecipients(t *testing.T) {
	sender := NewEmailSender("k", "f@example.com")
	assert.Error(t, sender.SendEmail(context.Background(), "s", "b", nil))
}
