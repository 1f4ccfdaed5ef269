package gemini

// Request shape we send to the generateContent endpoint.
type generateContentRequest struct {
	Contents []providerContent `json:"contents"`
}

type providerContent struct {
	Parts []providerPart `json:"parts"`
}

type providerPart struct {
	Text string `json:"text"`
}

type providerCandidate struct {
	Content      providerContent `json:"content"`
	FinishReason string          `json:"finishReason,omitempty"`
}

type generateContentResponse struct {
	Candidates []providerCandidate `json:"candidates"`
}

type providerErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
