package twilio

import (
	"fmt"

	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/twilio/twilio-go/client/jwt"
)

// AccessTokenService mints short-lived Twilio Voice access tokens for
// softphone clients. A client registered with such a token is reachable
// as a <Client> dial target under its user id identity.
type AccessTokenService struct {
	accountSID   string
	apiKeySID    string
	apiKeySecret string
	appSID       string
	enabled      bool
}

// DefaultTokenTTLSeconds is one hour, matching the Twilio default.
const DefaultTokenTTLSeconds = 3600

// NewAccessTokenService creates a token service.
// If any credential is empty, the service will be disabled.
func NewAccessTokenService(accountSID, apiKeySID, apiKeySecret, appSID string) *AccessTokenService {
	if accountSID == "" || apiKeySID == "" || apiKeySecret == "" {
		logger.Base().Warn("Twilio API key not provided, voice token service disabled")
		return &AccessTokenService{enabled: false}
	}
	return &AccessTokenService{
		accountSID:   accountSID,
		apiKeySID:    apiKeySID,
		apiKeySecret: apiKeySecret,
		appSID:       appSID,
		enabled:      true,
	}
}

// Enabled reports whether token minting is configured.
func (s *AccessTokenService) Enabled() bool {
	return s.enabled
}

// VoiceToken mints a JWT granting the identity inbound and outbound
// voice over the configured TwiML application.
func (s *AccessTokenService) VoiceToken(identity string) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("voice token service is disabled")
	}
	if identity == "" {
		return "", fmt.Errorf("identity is required")
	}

	token := jwt.CreateAccessToken(jwt.AccessTokenParams{
		AccountSid:    s.accountSID,
		SigningKeySid: s.apiKeySID,
		Secret:        s.apiKeySecret,
		Identity:      identity,
		Ttl:           DefaultTokenTTLSeconds,
	})
	token.AddGrant(&jwt.VoiceGrant{
		Incoming: jwt.Incoming{Allow: true},
		Outgoing: jwt.Outgoing{ApplicationSid: s.appSID},
	})

	signed, err := token.ToJwt()
	if err != nil {
		return "", fmt.Errorf("failed to sign voice token: %w", err)
	}
	return signed, nil
}
