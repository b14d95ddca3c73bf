package api

// Credential headers recognized on job creation. Presence of any usable key
// marks the job for realtime mode; the keys themselves are held only until
// WebSocket attach.
const (
	headerOpenAIKey    = "X-OpenAI-Key"
	headerAnthropicKey = "X-Anthropic-Key"
	headerFireworksKey = "X-Fireworks-Key"
	headerDobbyModel   = "X-Dobby-Model"
)

// askRequest is the POST /api/ask body.
type askRequest struct {
	Prompt   string `json:"prompt"`
	LessonID string `json:"lessonId"`
	UserID   string `json:"userId"`
}
