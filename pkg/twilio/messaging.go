package twilio

import (
	"fmt"

	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// MessagingClient sends SMS/MMS through the Twilio REST API.
// If accountSID or authToken is empty, the client will be disabled.
type MessagingClient struct {
	client  *twilio.RestClient
	enabled bool
}

// NewMessagingClient creates a messaging client.
func NewMessagingClient(accountSID, authToken string) *MessagingClient {
	if accountSID == "" || authToken == "" {
		logger.Base().Warn("Twilio credentials not provided, messaging disabled")
		return &MessagingClient{enabled: false}
	}
	return &MessagingClient{
		client:  twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		enabled: true,
	}
}

// Enabled reports whether outbound messaging is configured.
func (c *MessagingClient) Enabled() bool {
	return c.enabled
}

// SendMessage sends one message and returns the provider message SID.
func (c *MessagingClient) SendMessage(to, from, body string, mediaURLs []string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("messaging client is disabled")
	}

	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	if body != "" {
		params.SetBody(body)
	}
	if len(mediaURLs) > 0 {
		params.SetMediaUrl(mediaURLs)
	}

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	logger.Base().Info("Message sent", zap.String("to", to), zap.String("sid", sid))
	return sid, nil
}
