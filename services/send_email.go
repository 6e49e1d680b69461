package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/portfolio-site/backend/models"
)

const defaultResendURL = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// EmailSender sends email through the Resend API.
type EmailSender struct {
	apiKey     string
	fromEmail  string
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewEmailSender(apiKey, fromEmail string) *EmailSender {
	return &EmailSender{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		endpoint:   defaultResendURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log.With().Str("service", "email").Logger(),
	}
}

// SendEmail sends an HTML email to recipients.
func (s *EmailSender) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    s.fromEmail,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		s.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}
	return nil
}

// FeedbackNotifier emails the site owner whenever a visitor leaves feedback.
type FeedbackNotifier struct {
	sender    *EmailSender
	recipient string
}

func NewFeedbackNotifier(sender *EmailSender, recipient string) *FeedbackNotifier {
	return &FeedbackNotifier{sender: sender, recipient: recipient}
}

func (n *FeedbackNotifier) NotifyFeedback(ctx context.Context, f models.Feedback) error {
	subject := fmt.Sprintf("New portfolio feedback from %s (%d★)", f.Name, f.Stars)
	return n.sender.SendEmail(ctx, subject, feedbackEmailBody(f), []string{n.recipient})
}

func feedbackEmailBody(f models.Feedback) string {
	var b strings.Builder
	b.WriteString("<p>New feedback was submitted on your portfolio.</p>")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(f.Name))
	fmt.Fprintf(&b, "<p><strong>Stars:</strong> %d</p>", f.Stars)
	fmt.Fprintf(&b, "<blockquote>%s</blockquote>", html.EscapeString(f.Feedback))
	if f.ProfileImage != nil {
		b.WriteString("<p>A profile image was attached.</p>")
	}
	return b.String()
}
