package fcm

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client sends device push notifications through Firebase Cloud
// Messaging. When credentials are missing the client is disabled and
// every send becomes a logged no-op, so push failures can never affect
// call handling.
type Client struct {
	messenger *messaging.Client
	enabled   bool
}

// NewClient initializes the Firebase Admin SDK from a service-account
// credentials file. A missing or unreadable file disables the client
// instead of failing startup.
func NewClient(ctx context.Context, credentialsFile string) *Client {
	if credentialsFile == "" {
		logger.Base().Warn("FCM credentials not configured, push notifications disabled")
		return &Client{enabled: false}
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		logger.Base().Warn("FCM credentials file not found, push notifications disabled",
			zap.String("file", credentialsFile))
		return &Client{enabled: false}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		logger.Base().Error("Failed to initialize Firebase app, push notifications disabled", zap.Error(err))
		return &Client{enabled: false}
	}

	messenger, err := app.Messaging(ctx)
	if err != nil {
		logger.Base().Error("Failed to initialize FCM messaging client", zap.Error(err))
		return &Client{enabled: false}
	}

	logger.Base().Info("FCM push client initialized")
	return &Client{messenger: messenger, enabled: true}
}

// Send delivers one push notification to a device token.
func (c *Client) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if !c.enabled {
		return nil
	}
	if token == "" {
		return fmt.Errorf("push token is empty")
	}

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
	}

	id, err := c.messenger.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	logger.Base().Info("Push notification sent", zap.String("message_id", id))
	return nil
}
