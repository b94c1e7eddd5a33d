package domain

import (
	"time"
)

// MessageDirection represents the direction of an SMS/MMS message
type MessageDirection string

const (
	MessageDirectionInbound  MessageDirection = "inbound"
	MessageDirectionOutbound MessageDirection = "outbound"
)

// Dial status codes reported by the telephony provider after a Dial attempt.
const (
	DialStatusNoAnswer = "no-answer"
	DialStatusBusy     = "busy"
	DialStatusFailed   = "failed"
	DialStatusCanceled = "canceled"
	DialStatusAnswered = "completed"
)

// PhoneNumber maps an E.164 number to the user that owns it and the
// provider-side phone resource it is bound to.
type PhoneNumber struct {
	ID            string    `json:"id" gorm:"type:varchar(255);primaryKey"`
	Number        string    `json:"number" gorm:"type:varchar(32);uniqueIndex;not null"`
	UserID        string    `json:"user_id" gorm:"type:varchar(255);not null;index"`
	RemotePhoneID string    `json:"remote_phone_id" gorm:"type:varchar(255)"`
	Active        bool      `json:"active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for PhoneNumber
func (PhoneNumber) TableName() string {
	return "phone_numbers"
}

// Assistant links a user to the remote AI assistant provisioned for them.
// One assistant per user; re-provisioning replaces the remote id wholesale.
type Assistant struct {
	ID                string    `json:"id" gorm:"type:varchar(255);primaryKey"`
	UserID            string    `json:"user_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	RemoteAssistantID string    `json:"remote_assistant_id" gorm:"type:varchar(255);index;not null"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Assistant
func (Assistant) TableName() string {
	return "assistants"
}

// BusinessProfile holds the per-user configuration that drives the
// assistant persona and call routing. Upserted as a whole on every setup
// call (last write wins, no partial merge).
type BusinessProfile struct {
	ID               string       `json:"id" gorm:"type:varchar(255);primaryKey"`
	UserID           string       `json:"user_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	VoiceID          string       `json:"voice_id" gorm:"type:varchar(255)"`
	AIName           string       `json:"ai_name" gorm:"type:varchar(255)"`
	FCMToken         string       `json:"fcm_token" gorm:"type:text"`
	RingCount        int          `json:"ring_count" gorm:"default:0"`
	RecordingEnabled bool         `json:"recording_enabled" gorm:"default:true"`
	BusinessData     BusinessData `json:"business_data" gorm:"type:jsonb"`
	CreatedAt        time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for BusinessProfile
func (BusinessProfile) TableName() string {
	return "business_profiles"
}

// CallSummary is the structured record produced once per completed call.
// Immutable after creation; call_id is unique so duplicate end-of-call
// webhooks cannot create a second row.
type CallSummary struct {
	ID              string     `json:"id" gorm:"type:varchar(255);primaryKey"`
	CallID          string     `json:"call_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID          string     `json:"user_id" gorm:"type:varchar(255);not null;index"`
	CallerPhone     string     `json:"caller_phone" gorm:"type:varchar(32)"`
	DurationSeconds int        `json:"duration_seconds" gorm:"default:0"`
	Transcript      string     `json:"transcript" gorm:"type:text"`
	SummaryText     string     `json:"summary_text" gorm:"type:text"`
	KeyPoints       StringList `json:"key_points" gorm:"type:jsonb"`
	Outcome         string     `json:"outcome" gorm:"type:varchar(255)"`
	CallerIntent    string     `json:"caller_intent" gorm:"type:text"`
	RecordingURL    string     `json:"recording_url" gorm:"type:text"`
	Timestamp       time.Time  `json:"timestamp" gorm:"index"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for CallSummary
func (CallSummary) TableName() string {
	return "call_summaries"
}

// Message represents one SMS/MMS in a thread between a user's business
// number and a customer number.
type Message struct {
	ID         string           `json:"id" gorm:"type:varchar(255);primaryKey"`
	MessageSID string           `json:"message_sid" gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID     string           `json:"user_id" gorm:"type:varchar(255);not null;index"`
	ToNumber   string           `json:"to_number" gorm:"type:varchar(32);not null"`
	FromNumber string           `json:"from_number" gorm:"type:varchar(32);not null"`
	Body       string           `json:"body" gorm:"type:text"`
	MediaURLs  StringList       `json:"media_urls" gorm:"type:jsonb"`
	Direction  MessageDirection `json:"direction" gorm:"type:varchar(16);not null"`
	Timestamp  time.Time        `json:"timestamp" gorm:"index"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for Message
func (Message) TableName() string {
	return "messages"
}

// EffectiveRingCount returns the configured ring count, defaulting to 4
// when the profile has none. The telephony dial timeout is ring count * 5s.
func (p *BusinessProfile) EffectiveRingCount() int {
	if p == nil || p.RingCount <= 0 {
		return 4
	}
	return p.RingCount
}

// RingTimeoutSeconds computes the dial timeout handed to the telephony
// provider for this profile.
func (p *BusinessProfile) RingTimeoutSeconds() int {
	return p.EffectiveRingCount() * 5
}
