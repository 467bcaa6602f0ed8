package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"order-card-bot/internal/conversation"
	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/serverutils"
	"order-card-bot/internal/repository/filesystem"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret   = "controller-secret"
	operator = int64(1234)
)

type echoConversation struct {
	events []conversation.Event
}

func (e *echoConversation) Handle(ctx context.Context, ev conversation.Event, r conversation.Responder) error {
	e.events = append(e.events, ev)
	if err := r.Emit(ctx, conversation.Prompt{Text: "first"}); err != nil {
		return err
	}
	return r.Emit(ctx, conversation.Prompt{
		Text:    "second",
		Choices: [][]conversation.Choice{{{Label: "Go", Data: "commit"}}},
	})
}

func newTestApp(t *testing.T) (*fiber.App, *echoConversation, *filesystem.DraftStore) {
	t.Helper()
	conv := &echoConversation{}
	drafts := filesystem.NewDraftStore(t.TempDir())

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	auth := serverutils.NewJwtMiddleware(secret)
	NewEventController(conv).RegisterRoutes(api, auth)
	NewDraftController(drafts).RegisterRoutes(api, auth)
	NewHealthController("filesystem", "http").RegisterRoutes(api)
	return app, conv, drafts
}

func request(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	token, err := serverutils.IssueToken(secret, operator, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestEventController(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
		want conversation.Event
	}{
		{name: "command", body: map[string]interface{}{"text": "/order"}, want: conversation.TextEvent("/order")},
		{name: "plain text", body: map[string]interface{}{"text": "25/12/2024"}, want: conversation.TextEvent("25/12/2024")},
		{name: "button", body: map[string]interface{}{"button": "edit:0"}, want: conversation.ButtonEvent("edit:0")},
		{
			name: "file",
			body: map[string]interface{}{"file": map[string]interface{}{"url": "https://files.example.com/a.pdf", "name": "a.pdf", "mime_type": "application/pdf"}},
			want: conversation.FileEvent(conversation.FileRef{ID: "https://files.example.com/a.pdf", Name: "a.pdf", MimeType: "application/pdf"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, conv, _ := newTestApp(t)

			status, body := request(t, app, "POST", "/api/events", tt.body)
			require.Equal(t, fiber.StatusOK, status)
			require.Len(t, conv.events, 1)
			assert.Equal(t, tt.want, conv.events[0])

			prompts := body["data"].(map[string]interface{})["prompts"].([]interface{})
			require.Len(t, prompts, 2)
			assert.Equal(t, "second", prompts[1].(map[string]interface{})["text"])
		})
	}
}

func TestEventController_RejectsEmptyEvent(t *testing.T) {
	app, conv, _ := newTestApp(t)

	status, body := request(t, app, "POST", "/api/events", map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, conv.events)
}

func TestDraftController(t *testing.T) {
	app, _, drafts := newTestApp(t)
	_, err := drafts.Append(context.Background(), operator, &entity.Draft{
		Title:   "123 | ACME",
		Body:    "Caneca - 10 UND",
		DueISO:  "2024-12-25T16:00:00.000Z",
		Members: []entity.Collaborator{{ID: "m1", Name: "Ana"}},
	})
	require.NoError(t, err)

	status, body := request(t, app, "GET", "/api/drafts", nil)
	require.Equal(t, fiber.StatusOK, status)
	list := body["data"].([]interface{})
	require.Len(t, list, 1)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "123 | ACME", first["title"])
	assert.Equal(t, "25/12/2024", first["due"])
	assert.Equal(t, []interface{}{"Ana"}, first["members"])

	status, _ = request(t, app, "GET", "/api/drafts/0", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = request(t, app, "GET", "/api/drafts/3", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Draft not found", body["message"])
}

func TestHealthController(t *testing.T) {
	app, _, _ := newTestApp(t)
	status, body := request(t, app, "GET", "/api/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "filesystem", body["data"].(map[string]interface{})["storage"])
}
