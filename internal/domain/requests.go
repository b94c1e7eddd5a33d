package domain

// AssistantSetupRequest is the payload for creating or replacing a user's
// assistant and business profile in one call.
type AssistantSetupRequest struct {
	UserID           string       `json:"user_id"`
	VoiceID          string       `json:"voice_id,omitempty"`
	AIName           string       `json:"ai_name,omitempty"`
	RingCount        int          `json:"ring_count,omitempty"`
	RecordingEnabled *bool        `json:"recording_enabled,omitempty"`
	BusinessData     BusinessData `json:"business_data"`
}

// PhoneSetupRequest is the payload for binding a phone number to a user's
// assistant. Number is optional; when empty the first available number
// from the provider pool is used.
type PhoneSetupRequest struct {
	UserID string `json:"user_id"`
	Number string `json:"phone_number,omitempty"`
}

// OutboundCallRequest asks the assistant to place a call to a customer.
type OutboundCallRequest struct {
	UserID     string `json:"user_id"`
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"phone_number_to_call"`
}

// SendMessageRequest is the payload for sending an outbound SMS/MMS from
// the user's business number.
type SendMessageRequest struct {
	UserID    string   `json:"user_id"`
	ToNumber  string   `json:"to_number"`
	Body      string   `json:"body"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

// RegisterFCMTokenRequest stores a device push token on a user's profile.
type RegisterFCMTokenRequest struct {
	UserID   string `json:"user_id"`
	FCMToken string `json:"fcm_token"`
}

// HistoryEntry is one item of the unified call/message history view.
type HistoryEntry struct {
	Kind    string       `json:"kind"` // "call" or "message"
	Call    *CallSummary `json:"call,omitempty"`
	Message *Message     `json:"message,omitempty"`
}
