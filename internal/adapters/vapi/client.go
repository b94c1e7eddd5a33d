package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// Client handles communication with the Vapi-compatible call-AI provider.
// Every method is a bounded network round-trip; failures come back as
// errors wrapping domain.ErrUpstream and never panic across the boundary.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new call-AI provider client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateAssistant creates a remote assistant resource.
func (c *Client) CreateAssistant(ctx context.Context, cfg AssistantConfig) (*AssistantResource, error) {
	var resource AssistantResource
	if err := c.doJSON(ctx, http.MethodPost, "/assistant", cfg, &resource); err != nil {
		return nil, err
	}
	logger.Base().Info("Created remote assistant", zap.String("assistant_id", resource.ID))
	return &resource, nil
}

// UpdateAssistant patches an existing remote assistant resource.
func (c *Client) UpdateAssistant(ctx context.Context, id string, patch AssistantConfig) (*AssistantResource, error) {
	var resource AssistantResource
	if err := c.doJSON(ctx, http.MethodPatch, "/assistant/"+id, patch, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListPhoneNumbers lists all phone-number resources on the provider.
func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumberResource, error) {
	var numbers []PhoneNumberResource
	if err := c.doJSON(ctx, http.MethodGet, "/phone-number", nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

// CreatePhoneNumber creates a provider phone-number resource bound to an
// assistant.
func (c *Client) CreatePhoneNumber(ctx context.Context, cfg PhoneNumberConfig) (*PhoneNumberResource, error) {
	var resource PhoneNumberResource
	if err := c.doJSON(ctx, http.MethodPost, "/phone-number", cfg, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// UpdatePhoneNumber patches the assistant binding of an existing
// phone-number resource.
func (c *Client) UpdatePhoneNumber(ctx context.Context, id, assistantID string) (*PhoneNumberResource, error) {
	patch := map[string]string{"assistantId": assistantID}
	var resource PhoneNumberResource
	if err := c.doJSON(ctx, http.MethodPatch, "/phone-number/"+id, patch, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListAvailableNumbers lists purchasable numbers from the provider pool.
func (c *Client) ListAvailableNumbers(ctx context.Context) ([]AvailableNumber, error) {
	var numbers []AvailableNumber
	if err := c.doJSON(ctx, http.MethodGet, "/phone-number/available?countryCode=US", nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

// GetCall fetches the authoritative call record, including the final
// transcript, after a call has ended.
func (c *Client) GetCall(ctx context.Context, callID string) (*CallResource, error) {
	var call CallResource
	if err := c.doJSON(ctx, http.MethodGet, "/call/"+callID, nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// CreateOutboundCall places an assistant-initiated call to a customer.
func (c *Client) CreateOutboundCall(ctx context.Context, cfg OutboundCallConfig) (*CallResource, error) {
	var call CallResource
	if err := c.doJSON(ctx, http.MethodPost, "/call", cfg, &call); err != nil {
		return nil, err
	}
	logger.Base().Info("Outbound call initiated", zap.String("call_id", call.ID))
	return &call, nil
}

// doJSON performs one JSON request/response round trip against the
// provider API.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Base().Error("Provider API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return fmt.Errorf("%w: %s %s returned %d", domain.ErrUpstream, method, path, resp.StatusCode)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstream, err)
		}
	}
	return nil
}
