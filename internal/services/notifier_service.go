package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ai-trend-tracker/pkg/logger"
)

// NotifierService delivers markdown messages to a WeCom-compatible webhook.
// Delivery failure is logged and reported as a boolean; it never unwinds
// already persisted data.
type NotifierService struct {
	webhookURL string
	client     *http.Client
}

func NewNotifierService(webhookURL string) *NotifierService {
	return &NotifierService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	MsgType  string          `json:"msgtype"`
	Markdown webhookMarkdown `json:"markdown"`
}

type webhookMarkdown struct {
	Content string `json:"content"`
}

type webhookResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// SendMarkdown posts a markdown message to the webhook and reports success.
func (s *NotifierService) SendMarkdown(ctx context.Context, content string) bool {
	payload := webhookPayload{
		MsgType:  "markdown",
		Markdown: webhookMarkdown{Content: content},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Errorf("Failed to marshal webhook payload")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewReader(body))
	if err != nil {
		logger.WithError(err).Errorf("Failed to create webhook request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.WithError(err).Errorf("Failed to send webhook message")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Errorf("Webhook returned status %d", resp.StatusCode)
		return false
	}

	var result webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.WithError(err).Errorf("Failed to decode webhook response")
		return false
	}

	if result.ErrCode != 0 {
		logger.Errorf("Webhook API error %d: %s", result.ErrCode, result.ErrMsg)
		return false
	}

	logger.Infof("Message sent successfully to webhook")
	return true
}
