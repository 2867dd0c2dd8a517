// Package chat holds the clients for the two external model services the
// styling workflow depends on: a chat-style text-generation service (Ollama or
// Gemini) and the Gemini image-editing endpoint.
//
// Clients never panic across the network boundary. Failures come back as
// ErrNoMessages, ErrNotConfigured, *TransportError or *MalformedResponseError
// so callers can pick a fallback without string inspection.
package chat

import "context"

// Roles used in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Image is an encoded image blob together with its MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Message is one prior turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Prompt is a single text-generation request.
type Prompt struct {
	// User is the current user turn. Optional when History is non-empty.
	User string
	// System is an optional system instruction.
	System string
	// History holds earlier turns, oldest first.
	History []Message
	// Image, when set, is attached to User, or to the last user turn in
	// History when User is empty.
	Image *Image
	// JSON asks the service to constrain output to valid JSON. The output is
	// not validated here; callers parse it.
	JSON bool
}

// validate enforces that there is at least one message to send.
func (p Prompt) validate() error {
	if p.User == "" && len(p.History) == 0 {
		return ErrNoMessages
	}
	return nil
}

// historyImageTurn returns the index of the History message that carries
// Image, or -1 when the image goes with User or there is no image.
func (p Prompt) historyImageTurn() int {
	if p.User != "" || p.Image == nil || len(p.Image.Data) == 0 {
		return -1
	}
	for i := len(p.History) - 1; i >= 0; i-- {
		if p.History[i].Role == RoleUser {
			return i
		}
	}
	return -1
}

// TextGenerator sends a prompt to a text-generation service and returns the
// raw model output.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}
