package dto

type CreateSessionRequest struct {
	Feature string `json:"feature"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
	Feature   string `json:"feature"`
}

type AssistantMessageRequest struct {
	Message string `json:"message"`
	// Context is optional surrounding text, such as a draft post.
	Context string `json:"context,omitempty"`
}

type AssistantMessageResponse struct {
	Reply    string `json:"reply"`
	Provider string `json:"provider"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
