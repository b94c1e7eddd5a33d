package prompts

import (
	"fmt"
	"strings"

	"github.com/oranihq/orani-voice-service/internal/domain"
)

// voiceDisplayNames maps provider voice ids to the assistant display name
// spoken on calls. Unknown ids fall back to DefaultVoiceDisplayName.
var voiceDisplayNames = map[string]string{
	"ys3XeJJA4ArWMhRpcX1D": "Orani",
	"21m00Tcm4TlvDq8ikWAM": "Rachel",
	"AZnzlk1XvdvUeBnXmlld": "Domi",
	"EXAVITQu4vr4xnSDxMaL": "Bella",
	"ErXwobaYiN019PkySvjV": "Antoni",
	"TxGEqnHWrfWFTfGW9XjX": "Josh",
}

// VoiceDisplayName maps a voice id through the fixed lookup table,
// falling back to the default display name for unknown ids.
func VoiceDisplayName(voiceID string) string {
	if name, ok := voiceDisplayNames[voiceID]; ok {
		return name
	}
	return DefaultVoiceDisplayName
}

// Compile renders the assistant system prompt from structured business
// data. It is a pure transform: no network or storage access, and the
// same input always produces byte-identical output, so prompts can be
// regenerated without side effects.
func Compile(data domain.BusinessData, voiceID string) string {
	businessName := data.BusinessName
	if businessName == "" {
		businessName = DefaultBusinessName
	}

	return fmt.Sprintf(personaTemplate,
		VoiceDisplayName(voiceID),
		businessName,
		orNotSpecified(data.ServiceDescription),
		compileHours(data.Hours),
		compilePrices(data.Prices),
		orNotSpecified(data.ContactPhone),
		orNotSpecified(data.BookingURL),
		compileRole(data),
	)
}

// Greeting returns the configured first message or the fixed default.
func Greeting(data domain.BusinessData) string {
	if data.Greeting != "" {
		return data.Greeting
	}
	return DefaultGreeting
}

func compileHours(hours []domain.HoursRange) string {
	if len(hours) == 0 {
		return "  - " + NotSpecified
	}
	var b strings.Builder
	for i, h := range hours {
		if i > 0 {
			b.WriteString("\n")
		}
		days := strings.Join(h.Days, ", ")
		if days == "" {
			days = NotSpecified
		}
		b.WriteString(fmt.Sprintf("  - %s: %s to %s",
			days, orNotSpecified(h.StartTime), orNotSpecified(h.EndTime)))
	}
	return b.String()
}

func compilePrices(prices []domain.PriceItem) string {
	if len(prices) == 0 {
		return "  - " + NotSpecified
	}
	var b strings.Builder
	for i, p := range prices {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("  - %s: %s",
			orNotSpecified(p.PackageName), orNotSpecified(p.PackagePrice)))
	}
	return b.String()
}

func compileRole(data domain.BusinessData) string {
	tasks := NotSpecified
	if len(data.Tasks) > 0 {
		tasks = strings.Join(data.Tasks, ", ")
	}
	callTypes := NotSpecified
	if len(data.CallTypes) > 0 {
		callTypes = strings.Join(data.CallTypes, ", ")
	}
	industries := NotSpecified
	if len(data.Industries) > 0 {
		industries = strings.Join(data.Industries, ", ")
	}
	return fmt.Sprintf("- Your main tasks are to: %s.\n- You will primarily handle: %s.\n- This business is in the %s industry.",
		tasks, callTypes, industries)
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v
}
