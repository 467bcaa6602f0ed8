package board

import (
	"context"
	"fmt"
)

// Client is the subset of the Trello API the bot needs. Every method is one remote call.
type Client interface {
	CreateCard(ctx context.Context, req CardRequest) (*Card, error)
	CreateChecklist(ctx context.Context, cardID, name string) (*Checklist, error)
	AddCheckItem(ctx context.Context, checklistID, name string) error
	AddComment(ctx context.Context, cardID, text string) error
	AddMember(ctx context.Context, cardID, memberID string) error
	AddLabel(ctx context.Context, cardID, labelID string) error
	UploadAttachment(ctx context.Context, cardID, localPath string) error

	Lists(ctx context.Context, boardID string) ([]List, error)
	Members(ctx context.Context, boardID string) ([]Member, error)
	Labels(ctx context.Context, boardID string) ([]Label, error)
	Cards(ctx context.Context, boardID string) ([]Card, error)
}

// Factory builds a client bound to one operator's credentials.
type Factory func(apiKey, token string) Client

type CardRequest struct {
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	ListID string `json:"idList"`
	Due    string `json:"due,omitempty"`
}

type Card struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	Due    string `json:"due"`
	ListID string `json:"idList"`
	URL    string `json:"url"`
}

type Checklist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Member struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// DisplayName prefers the full name and falls back to the username.
func (m Member) DisplayName() string {
	if m.FullName != "" {
		return m.FullName
	}
	if m.Username != "" {
		return m.Username
	}
	return "unnamed"
}

type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DisplayName falls back to the color for unnamed labels.
func (l Label) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	if l.Color != "" {
		return l.Color
	}
	return "unnamed"
}

// RemoteError is a failed board call: transport failure (Status 0) or a non-2xx response.
type RemoteError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("board %s failed: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
