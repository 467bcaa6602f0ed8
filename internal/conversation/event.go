package conversation

import (
	"context"
	"strconv"
	"strings"

	"order-card-bot/internal/entity"
)

type EventKind string

const (
	EventText    EventKind = "text"
	EventCommand EventKind = "command"
	EventFile    EventKind = "file"
	EventButton  EventKind = "button"
)

// FileRef points at a file the transport can download on request.
type FileRef struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// Event is one inbound operator action, already classified by the transport.
type Event struct {
	Kind EventKind
	// Text is the message text, or the arguments of a command.
	Text    string
	Command string
	Data    string
	File    *FileRef
}

// TextEvent classifies a typed message as a command when it starts with '/'.
// A "@botname" suffix on the command is dropped.
func TextEvent(text string) Event {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return Event{Kind: EventText, Text: text}
	}

	head, args, _ := strings.Cut(trimmed[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return Event{Kind: EventCommand, Command: strings.ToLower(head), Text: strings.TrimSpace(args)}
}

func ButtonEvent(data string) Event {
	return Event{Kind: EventButton, Data: data}
}

func FileEvent(file FileRef) Event {
	return Event{Kind: EventFile, File: &file}
}

// button splits "name:arg" callback data. Index is -1 when arg is absent or not a number.
func (e Event) button() (name string, index int) {
	name, arg, found := strings.Cut(e.Data, ":")
	if !found {
		return name, -1
	}
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 {
		return name, -1
	}
	return name, i
}

type Choice struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Prompt is one outbound message with optional button rows.
type Prompt struct {
	Text    string     `json:"text"`
	Choices [][]Choice `json:"choices,omitempty"`
}

// Responder delivers prompts back to the operator who produced the event,
// whatever the origin (typed message, button press, HTTP call).
type Responder interface {
	Emit(ctx context.Context, p Prompt) error
	SourceUser() int64
}

// Downloader fetches a transport file into dir and returns the local path.
type Downloader interface {
	Download(ctx context.Context, file FileRef, dir string) (string, error)
}

// Committer runs the commit pipeline; progress receives one line per processed draft.
type Committer interface {
	CommitAll(ctx context.Context, operatorID int64, progress func(line string)) (*entity.CommitReport, error)
}
