package dto

type FileRequest struct {
	URL      string `json:"url" validate:"required,url"`
	Name     string `json:"name" validate:"required"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// EventRequest is one operator action. Text starting with "/" is treated as a command.
type EventRequest struct {
	Text   string       `json:"text" validate:"required_without_all=Button File"`
	Button string       `json:"button"`
	File   *FileRequest `json:"file" validate:"omitempty"`
}

type ChoiceResponse struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

type PromptResponse struct {
	Text    string             `json:"text"`
	Choices [][]ChoiceResponse `json:"choices,omitempty"`
}

type EventResponse struct {
	Prompts []PromptResponse `json:"prompts"`
}
