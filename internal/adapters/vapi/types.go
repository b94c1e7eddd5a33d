package vapi

// AssistantConfig is the payload for creating or patching a remote
// assistant resource.
type AssistantConfig struct {
	Name            string            `json:"name,omitempty"`
	ServerURL       string            `json:"serverUrl,omitempty"`
	Model           *ModelConfig      `json:"model,omitempty"`
	Voice           *VoiceConfig      `json:"voice,omitempty"`
	FirstMessage    string            `json:"firstMessage,omitempty"`
	RecordingOn     *bool             `json:"recordingEnabled,omitempty"`
	EndCallMessage  string            `json:"endCallMessage,omitempty"`
	MaxDurationSecs int               `json:"maxDurationSeconds,omitempty"`
	Transcriber     *TranscriberConf  `json:"transcriber,omitempty"`
	BackgroundSound string            `json:"backgroundSound,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ModelConfig configures the LLM behind the assistant.
type ModelConfig struct {
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Messages []ModelMessage `json:"messages,omitempty"`
}

// ModelMessage is a single prompt message, typically the system prompt.
type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// VoiceConfig configures the TTS voice.
type VoiceConfig struct {
	Provider        string  `json:"provider"`
	VoiceID         string  `json:"voiceId"`
	Speed           float64 `json:"speed,omitempty"`
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarityBoost,omitempty"`
}

// TranscriberConf configures the speech-to-text provider.
type TranscriberConf struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
}

// AssistantResource is the provider-side assistant record.
type AssistantResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PhoneNumberConfig is the payload for creating a provider phone number.
type PhoneNumberConfig struct {
	Provider         string `json:"provider"`
	Number           string `json:"number"`
	TwilioAccountSID string `json:"twilioAccountSid,omitempty"`
	TwilioAuthToken  string `json:"twilioAuthToken,omitempty"`
	AssistantID      string `json:"assistantId,omitempty"`
}

// PhoneNumberResource is the provider-side phone-number record.
type PhoneNumberResource struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	AssistantID string `json:"assistantId"`
}

// AvailableNumber is one entry of the provider's purchasable pool.
type AvailableNumber struct {
	Number string `json:"phoneNumber"`
}

// CallResource is the authoritative call record fetched after call end.
type CallResource struct {
	ID           string    `json:"id"`
	AssistantID  string    `json:"assistantId"`
	Transcript   string    `json:"transcript"`
	StartedAt    string    `json:"startedAt"`
	EndedAt      string    `json:"endedAt"`
	RecordingURL string    `json:"recordingUrl"`
	Customer     *Customer `json:"customer"`
}

// Customer identifies the remote party of a call.
type Customer struct {
	Number string `json:"number"`
}

// CustomerNumber returns the caller number or empty when absent.
func (c *CallResource) CustomerNumber() string {
	if c == nil || c.Customer == nil {
		return ""
	}
	return c.Customer.Number
}

// OutboundCallConfig is the payload for placing an assistant-initiated call.
type OutboundCallConfig struct {
	AssistantID   string    `json:"assistantId"`
	PhoneNumberID string    `json:"phoneNumberId"`
	Customer      *Customer `json:"customer"`
	Type          string    `json:"type"`
}
