package dto

import "time"

type ChecklistResponse struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

type DraftResponse struct {
	Index       int                 `json:"index"`
	Title       string              `json:"title"`
	Body        string              `json:"body"`
	Due         string              `json:"due,omitempty"`
	DueISO      string              `json:"due_iso,omitempty"`
	Comment     string              `json:"comment,omitempty"`
	Checklists  []ChecklistResponse `json:"checklists"`
	Members     []string            `json:"members"`
	Labels      []string            `json:"labels"`
	Attachments int                 `json:"attachments"`
	Edited      bool                `json:"edited"`
	CreatedAt   time.Time           `json:"created_at"`
}
