package dto

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message  string `json:"message" binding:"required"`
	Category string `json:"category"`
}

// ChatResponse carries the rendered answer, citations included
type ChatResponse struct {
	Response string `json:"response"`
}
