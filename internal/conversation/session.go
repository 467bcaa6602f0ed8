package conversation

import (
	"strconv"

	"order-card-bot/internal/repository/memory"
	"order-card-bot/pkg/board"
)

// Mode is the top-level activity an operator is in.
type Mode string

// Stage is the step inside a Mode.
type Stage string

const (
	ModeIdle        Mode = ""
	ModeCredentials Mode = "credentials"
	ModeCollecting  Mode = "collecting_documents"
	ModeEditField   Mode = "editing_field"
	ModeChecklist   Mode = "creating_checklist"
	ModeSelecting   Mode = "selecting"
	ModeAttachments Mode = "collecting_attachments"
	ModeSearch      Mode = "searching"
)

const (
	StageNone Stage = ""

	StageAwaitingKey   Stage = "awaiting_key"
	StageAwaitingToken Stage = "awaiting_token"
	StageAwaitingBoard Stage = "awaiting_board"

	StageAwaitingDate    Stage = "awaiting_date"
	StageAwaitingComment Stage = "awaiting_comment"
	StageAwaitingTitle   Stage = "awaiting_title"
	StageAwaitingBody    Stage = "awaiting_body"

	StageAwaitingName  Stage = "awaiting_name"
	StageAwaitingItems Stage = "awaiting_items"

	StageMembers Stage = "members"
	StageLabels  Stage = "labels"

	StageAwaitingTerm Stage = "awaiting_term"
)

// noDraft marks a session that does not point at any draft.
const noDraft = -1

// Session is one operator's conversational position. It is never persisted.
type Session struct {
	OperatorID int64
	Mode       Mode
	Stage      Stage

	// DraftIndex is the draft being edited, or noDraft.
	DraftIndex int
	// CardID is set when a flow targets a card that already exists on the board.
	CardID   string
	CardName string

	SearchResults []board.Card

	PendingCredentials   pendingCredentials
	PendingChecklistName string
	PendingAttachments   []string
	Choices              []choiceOption
}

type pendingCredentials struct {
	APIKey string
	Token  string
}

type choiceOption struct {
	ID   string
	Name string
}

func newSession(operatorID int64) *Session {
	return &Session{OperatorID: operatorID, DraftIndex: noDraft}
}

func (s *Session) Idle() bool {
	return s.Mode == ModeIdle
}

// hasBuffers reports whether any flow-scoped buffer holds data. A viewed card
// counts: it stays the target of /addchk until cancelled.
func (s *Session) hasBuffers() bool {
	return s.CardID != "" ||
		s.PendingCredentials != (pendingCredentials{}) ||
		s.PendingChecklistName != "" ||
		len(s.PendingAttachments) > 0 ||
		len(s.Choices) > 0
}

// abandon leaves the current flow and drops its buffers. Search results survive
// so earlier card buttons keep working.
func (s *Session) abandon() {
	s.Mode = ModeIdle
	s.Stage = StageNone
	s.DraftIndex = noDraft
	s.CardID = ""
	s.CardName = ""
	s.PendingCredentials = pendingCredentials{}
	s.PendingChecklistName = ""
	s.PendingAttachments = nil
	s.Choices = nil
}

// Reset returns the session to a blank idle state.
func (s *Session) Reset() {
	s.abandon()
	s.SearchResults = nil
}

func (s *Session) enter(mode Mode, stage Stage) {
	s.Mode = mode
	s.Stage = stage
}

// Registry hands out sessions by operator, creating them lazily.
type Registry struct {
	repo *memory.SessionRepository[Session]
}

func NewRegistry(repo *memory.SessionRepository[Session]) *Registry {
	return &Registry{repo: repo}
}

func (r *Registry) LoadOrCreate(operatorID int64) *Session {
	if s, found := r.repo.Get(key(operatorID)); found {
		return s
	}
	return newSession(operatorID)
}

func (r *Registry) Save(s *Session) {
	r.repo.Save(key(s.OperatorID), s)
}

func (r *Registry) Get(operatorID int64) (*Session, bool) {
	return r.repo.Get(key(operatorID))
}

func key(operatorID int64) string {
	return strconv.FormatInt(operatorID, 10)
}
