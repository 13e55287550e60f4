package entity

// Message is a single role-tagged entry sent to a language model.
type Message struct {
	Role    Role
	Content string
}

// ModelRequest is the composed two-part prompt: policy instruction followed
// by the user content.
type ModelRequest struct {
	Messages []Message
}

type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// ChatResult is what a turn returns to the caller. Images is never nil.
type ChatResult struct {
	Response string              `json:"response"`
	Images   map[string][]string `json:"images"`
}

func NewChatResult(response string, images map[string][]string) *ChatResult {
	if images == nil {
		images = map[string][]string{}
	}
	return &ChatResult{Response: response, Images: images}
}
