package chat

// Model IDs used by the styling workflow.
//
// | Model                    | Backend | Use                              |
// |--------------------------|---------|----------------------------------|
// | gemma3:12b               | Ollama  | classification, planning, summary |
// | gemini-2.5-flash         | Gemini  | same, when TEXT_BACKEND=gemini    |
// | gemini-2.5-flash-image   | Gemini  | outfit image edits                |
const (
	// DefaultOllamaModel is the Gemma model served by the Ollama endpoint.
	DefaultOllamaModel = "gemma3:12b"

	// DefaultGeminiTextModel is used when text generation runs on Gemini.
	DefaultGeminiTextModel = "gemini-2.5-flash"

	// DefaultGeminiImageModel edits the clothing in the source photo.
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
)

// DefaultGeminiBaseURL is the Gemini REST API base URL.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultOllamaBaseURL points at a local Ollama daemon.
const DefaultOllamaBaseURL = "http://localhost:11434"
