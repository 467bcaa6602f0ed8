package entity

import (
	"time"

	"github.com/google/uuid"
)

type Collaborator struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Checklist struct {
	Name  string   `yaml:"name" json:"name"`
	Items []string `yaml:"items" json:"items"`
}

// Draft is a card that exists only locally until the commit run creates it on the board.
type Draft struct {
	Title          string         `yaml:"title" json:"title"`
	Body           string         `yaml:"body" json:"body"`
	DueRaw         string         `yaml:"due_raw,omitempty" json:"due_raw,omitempty"`
	DueISO         string         `yaml:"due_iso,omitempty" json:"due_iso,omitempty"`
	Items          []string       `yaml:"items,omitempty" json:"items,omitempty"`
	Observations   string         `yaml:"observations,omitempty" json:"observations,omitempty"`
	Comment        string         `yaml:"comment,omitempty" json:"comment,omitempty"`
	Attachments    []string       `yaml:"attachments,omitempty" json:"attachments,omitempty"`
	Members        []Collaborator `yaml:"members,omitempty" json:"members,omitempty"`
	Labels         []Collaborator `yaml:"labels,omitempty" json:"labels,omitempty"`
	Checklists     []Checklist    `yaml:"checklists,omitempty" json:"checklists,omitempty"`
	Edited         bool           `yaml:"edited" json:"edited"`
	SourceDocument string         `yaml:"source_document,omitempty" json:"source_document,omitempty"`
	CreatedAt      time.Time      `yaml:"created_at" json:"created_at"`
}

// HasDue reports whether the draft carries a normalized due instant.
func (d *Draft) HasDue() bool {
	return d.DueISO != ""
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Items = append([]string(nil), d.Items...)
	c.Attachments = append([]string(nil), d.Attachments...)
	c.Members = append([]Collaborator(nil), d.Members...)
	c.Labels = append([]Collaborator(nil), d.Labels...)
	c.Checklists = make([]Checklist, 0, len(d.Checklists))
	for _, cl := range d.Checklists {
		c.Checklists = append(c.Checklists, Checklist{Name: cl.Name, Items: append([]string(nil), cl.Items...)})
	}
	if len(c.Checklists) == 0 {
		c.Checklists = nil
	}
	return &c
}

// ToggleCollaborator flips membership of item in set, keyed by ID.
// It returns the new set and whether the item is now selected.
func ToggleCollaborator(set []Collaborator, item Collaborator) ([]Collaborator, bool) {
	for i, existing := range set {
		if existing.ID == item.ID {
			return append(set[:i:i], set[i+1:]...), false
		}
	}
	return append(set, item), true
}

// ContainsCollaborator reports whether id is in set.
func ContainsCollaborator(set []Collaborator, id string) bool {
	for _, c := range set {
		if c.ID == id {
			return true
		}
	}
	return false
}

// StoredDraft is a draft as held by the relational backend, keyed by (operator, sequence).
type StoredDraft struct {
	ID         uuid.UUID
	OperatorID int64
	Sequence   int
	Draft      *Draft
	UpdatedAt  time.Time
}
