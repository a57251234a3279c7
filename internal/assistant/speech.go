package assistant

import "context"

// Synthesizer voices a finished reply on whatever audio channel is wired
// in. The engine hands it the localized text for Arabic sessions.
type Synthesizer interface {
	Speak(ctx context.Context, text string, lang Language) error
}

// NoopSynthesizer discards replies. It is the default for text-only
// deployments such as the WhatsApp webhook.
type NoopSynthesizer struct{}

func (NoopSynthesizer) Speak(context.Context, string, Language) error { return nil }
