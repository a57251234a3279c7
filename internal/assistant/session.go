package assistant

import (
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Session is one end user's conversation: the transcript sent to the model,
// the active language, and the selection sub-dialogue state. A session is
// never shared across users and its turns are processed one at a time.
type Session struct {
	ID         string
	Language   Language
	Transcript []openai.ChatCompletionMessage
	Selection  SelectionState

	// serializes turns; every turn mutates the transcript
	mu sync.Mutex
}

// SessionState is the serializable snapshot of a Session kept in the
// session store.
type SessionState struct {
	ID         string                         `json:"id"`
	Language   Language                       `json:"language"`
	Transcript []openai.ChatCompletionMessage `json:"transcript"`
	Selection  SelectionState                 `json:"selection"`
}

// NewSession creates a session whose transcript starts with the system
// instruction for the given language.
func NewSession(id string, lang Language) *Session {
	s := &Session{
		ID:        id,
		Language:  lang,
		Selection: SelectionState{Mode: SelectionIdle},
	}
	s.Transcript = []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(lang),
	}}
	return s
}

// SetLanguage switches the active language and regenerates the system
// instruction in place. Transcript position 0 always holds the current
// system instruction; every later turn is untouched.
func (s *Session) SetLanguage(lang Language) {
	s.Language = lang
	prompt := systemPrompt(lang)
	if len(s.Transcript) == 0 || s.Transcript[0].Role != openai.ChatMessageRoleSystem {
		s.Transcript = append([]openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		}}, s.Transcript...)
		return
	}
	s.Transcript[0].Content = prompt
}

func (s *Session) snapshot() *SessionState {
	transcript := make([]openai.ChatCompletionMessage, len(s.Transcript))
	copy(transcript, s.Transcript)
	return &SessionState{
		ID:         s.ID,
		Language:   s.Language,
		Transcript: transcript,
		Selection:  s.Selection,
	}
}

func restoreSession(state *SessionState) *Session {
	s := &Session{
		ID:         state.ID,
		Language:   state.Language,
		Transcript: state.Transcript,
		Selection:  state.Selection,
	}
	if s.Selection.Mode == "" {
		s.Selection.Mode = SelectionIdle
	}
	if len(s.Transcript) == 0 {
		s.Transcript = []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt(s.Language),
		}}
	}
	return s
}
