package generator

// Request shape we send to the generation service.
type serviceGenerateRequest struct {
	TopicID int64 `json:"topic_id"`
	UserID  int64 `json:"user_id"`
	Count   int   `json:"count,omitempty"`
}

type serviceGenerateResponse struct {
	TopicID   int64      `json:"topic_id"`
	Model     string     `json:"model,omitempty"`
	Questions []Question `json:"questions"`
}

type serviceErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}
