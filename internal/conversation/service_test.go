package conversation

import (
	"context"
	"errors"
	"os"
	"testing"

	"order-card-bot/internal/entity"
	"order-card-bot/pkg/board"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTextEvent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Event
	}{
		{name: "plain text", in: "hello", want: Event{Kind: EventText, Text: "hello"}},
		{name: "command", in: "/order", want: Event{Kind: EventCommand, Command: "order"}},
		{name: "command with args", in: "/search  caneca azul ", want: Event{Kind: EventCommand, Command: "search", Text: "caneca azul"}},
		{name: "bot suffix", in: "/Done@order_bot", want: Event{Kind: EventCommand, Command: "done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextEvent(tt.in))
		})
	}
}

func TestSplitChecklistItems(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "a -- b --  -- c", want: []string{"a", "b", "c"}},
		{in: "single", want: []string{"single"}},
		{in: " -- -- ", want: nil},
		{in: "", want: nil},
		{in: "cut vinyl--print -- pack box", want: []string{"cut vinyl", "print", "pack box"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitChecklistItems(tt.in, "--"))
		})
	}
}

func TestBareCancelReportsNothingToCancel(t *testing.T) {
	h := newHarness(t)

	p := h.send(t, "/cancel")
	assert.Equal(t, msgNothingToCancel, p.Text)
	assert.True(t, h.session(t).Idle())
}

func TestUnknownIdleInputGetsHelp(t *testing.T) {
	h := newHarness(t)
	h.configure(t)

	assert.Equal(t, msgHelp, h.send(t, "what now?").Text)
	assert.Equal(t, msgHelp, h.send(t, "/dance").Text)
	assert.Equal(t, msgIdleFile, h.upload(t, "x.pdf", "application/pdf", orderText).Text)
}

func TestCommandsRequireCredentials(t *testing.T) {
	h := newHarness(t)

	for _, cmd := range []string{"/order", "/preview", "/commit", "/search caneca", "/addchk", "/done"} {
		assert.Equal(t, msgConfigureFirst, h.send(t, cmd).Text, cmd)
	}
	assert.Equal(t, msgConfigureFirst, h.press(t, "edit:0").Text)

	assert.Equal(t, msgHelp, h.send(t, "/help").Text)
	assert.Equal(t, msgAskKey, h.send(t, "/config").Text)
	assert.Equal(t, msgCancelled, h.send(t, "/cancel").Text)
}

func TestCredentialBootstrap_NeverPersistsPartialSet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.send(t, "/start")
	assert.Equal(t, []string{msgWelcome, msgAskKey}, h.out.texts())

	assert.Equal(t, msgInvalidCredField, h.send(t, "has spaces in it").Text)
	assert.Equal(t, StageAwaitingKey, h.session(t).Stage)

	assert.Equal(t, msgAskToken, h.send(t, "abc123").Text)
	assert.Equal(t, msgAskBoard, h.send(t, "tok456").Text)

	lookup, err := h.creds.Find(ctx, testOperator)
	require.NoError(t, err)
	assert.Equal(t, entity.LookupNotConfigured, lookup.Status)

	h.send(t, "/cancel")
	assert.False(t, h.session(t).hasBuffers())
	lookup, err = h.creds.Find(ctx, testOperator)
	require.NoError(t, err)
	assert.Equal(t, entity.LookupNotConfigured, lookup.Status)

	h.send(t, "/config")
	h.send(t, "abc123")
	h.send(t, "tok456")
	assert.Equal(t, msgCredentialsSaved, h.send(t, " board789 ").Text)
	assert.True(t, h.session(t).Idle())

	lookup, err = h.creds.Find(ctx, testOperator)
	require.NoError(t, err)
	require.True(t, lookup.Ok())
	assert.Equal(t, &entity.Credentials{APIKey: "abc123", Token: "tok456", BoardID: "board789"}, lookup.Value)
}

func TestDocumentCollection(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	ctx := context.Background()

	_, err := h.drafts.Append(ctx, testOperator, &entity.Draft{Title: "stale"})
	require.NoError(t, err)

	assert.Equal(t, msgCollecting, h.send(t, "/order").Text)
	assert.Empty(t, h.listDrafts(t))

	assert.Equal(t, msgNotPDF, h.upload(t, "photo.jpg", "image/jpeg", "x").Text)
	assert.Contains(t, h.upload(t, "blank.pdf", "application/pdf", "   ").Text, "Could not extract blank.pdf")
	assert.Equal(t, ModeCollecting, h.session(t).Mode)

	p := h.upload(t, "order.pdf", "application/pdf", orderText)
	assert.Contains(t, p.Text, "Draft #1 created: 12345 | ACME LTDA")

	h.download.fail = true
	assert.Contains(t, h.upload(t, "second.pdf", "application/pdf", orderText).Text, "Could not download")
	h.download.fail = false

	assert.Equal(t, msgCollectingHint, h.send(t, "hello").Text)

	drafts := h.listDrafts(t)
	require.Len(t, drafts, 1)
	assert.Equal(t, "12345 | ACME LTDA", drafts[0].Title)
	assert.Equal(t, "25/12/2024", drafts[0].DueRaw)
	assert.Equal(t, "2024-12-25T16:00:00.000Z", drafts[0].DueISO)
	assert.Equal(t, "order.pdf", drafts[0].SourceDocument)

	h.out.reset()
	h.send(t, "/done")
	assert.True(t, h.session(t).Idle())
	require.Len(t, h.out.prompts, 2)
	assert.Equal(t, "edit:0", h.out.prompts[0].Choices[0][0].Data)
	assert.Equal(t, "1 draft(s) ready.", h.out.prompts[1].Text)

	_, err = os.Stat(h.filesDir + "/1001/order.pdf")
	assert.True(t, os.IsNotExist(err))
}

func TestCancelRestoresIdleAndKeepsPersistedDrafts(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 2)

	h.press(t, "comment:0")
	h.send(t, "keep me")
	before := h.listDrafts(t)

	cases := []struct {
		name  string
		enter func(t *testing.T)
	}{
		{name: "checklist items", enter: func(t *testing.T) { h.press(t, "checklist:1"); h.send(t, "Production") }},
		{name: "date edit", enter: func(t *testing.T) { h.press(t, "date:0") }},
		{name: "attachments", enter: func(t *testing.T) { h.press(t, "attach:0"); h.upload(t, "art.png", "image/png", "png") }},
		{name: "search term", enter: func(t *testing.T) { h.send(t, "/search") }},
		{name: "credentials", enter: func(t *testing.T) { h.send(t, "/config"); h.send(t, "newkey") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.enter(t)
			require.False(t, h.session(t).Idle())

			assert.Equal(t, msgCancelled, h.send(t, "/cancel").Text)

			s := h.session(t)
			assert.Equal(t, ModeIdle, s.Mode)
			assert.Equal(t, StageNone, s.Stage)
			assert.False(t, s.hasBuffers())
			assert.Equal(t, before, h.listDrafts(t))
		})
	}
}

func TestReentryAbandonsPreviousFlowBuffers(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 1)

	h.press(t, "checklist:0")
	h.send(t, "Production")
	require.Equal(t, "Production", h.session(t).PendingChecklistName)

	assert.Equal(t, msgAskDate, h.press(t, "date:0").Text)
	s := h.session(t)
	assert.Equal(t, ModeEditField, s.Mode)
	assert.Equal(t, StageAwaitingDate, s.Stage)
	assert.Empty(t, s.PendingChecklistName)
	assert.Empty(t, h.listDrafts(t)[0].Checklists)
}

func TestFieldEdit(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 2)

	h.press(t, "date:1")
	assert.Equal(t, msgInvalidDate, h.send(t, "31/02/2024").Text)
	assert.Equal(t, StageAwaitingDate, h.session(t).Stage)

	assert.Contains(t, h.out.texts(), msgInvalidDate)
	h.send(t, "01-02-2025")
	assert.True(t, h.session(t).Idle())

	drafts := h.listDrafts(t)
	assert.Equal(t, "2025-02-01T16:00:00.000Z", drafts[1].DueISO)
	assert.Equal(t, "01/02/2025", drafts[1].DueRaw)
	assert.True(t, drafts[1].Edited)
	assert.False(t, drafts[0].Edited)

	h.press(t, "comment:0")
	assert.Equal(t, msgEmptyComment, h.send(t, "   ").Text)
	h.send(t, "Deliver before noon")

	h.press(t, "title:0")
	h.send(t, "New title")

	drafts = h.listDrafts(t)
	assert.Equal(t, "Deliver before noon", drafts[0].Comment)
	assert.Equal(t, "New title", drafts[0].Title)
}

func TestOutOfRangeDraftIsReportedNotFound(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 1)

	assert.Equal(t, msgDraftNotFound, h.press(t, "edit:5").Text)
	assert.Equal(t, msgDraftNotFound, h.press(t, "date:3").Text)
	assert.True(t, h.session(t).Idle())
}

func TestDraftChecklist(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 2)

	assert.Equal(t, msgAskChecklistName, h.send(t, "/addchk 2").Text)
	assert.Equal(t, msgEmptyChecklist, h.send(t, "  ").Text)
	assert.Equal(t, msgAskItems, h.send(t, "Production").Text)
	assert.Equal(t, msgNoItems, h.send(t, " -- -- ").Text)
	assert.Equal(t, StageAwaitingItems, h.session(t).Stage)

	h.send(t, "a -- b --  -- c")
	assert.True(t, h.session(t).Idle())

	drafts := h.listDrafts(t)
	assert.Empty(t, drafts[0].Checklists)
	assert.Equal(t, []entity.Checklist{{Name: "Production", Items: []string{"a", "b", "c"}}}, drafts[1].Checklists)

	p := h.send(t, "/addchk")
	assert.Equal(t, msgChooseDraft, p.Text)
	require.Len(t, p.Choices, 2)
	assert.Equal(t, "checklist:1", p.Choices[1][0].Data)
}

func TestMemberTogglesPersistImmediately(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 1)

	h.board.On("Members", mock.Anything, "board1").Return([]board.Member{
		{ID: "m1", FullName: "Ana"},
		{ID: "m2", Username: "bruno"},
	}, nil)

	p := h.press(t, "members:0")
	require.Len(t, p.Choices, 3)
	assert.Equal(t, "⬜ Ana", p.Choices[0][0].Label)
	assert.Equal(t, "finish", p.Choices[2][0].Data)

	p = h.press(t, "toggle:1")
	assert.Equal(t, "✅ bruno", p.Choices[1][0].Label)
	assert.Equal(t, []entity.Collaborator{{ID: "m2", Name: "bruno"}}, h.listDrafts(t)[0].Members)

	h.press(t, "toggle:0")
	h.press(t, "toggle:1")
	assert.Equal(t, []entity.Collaborator{{ID: "m1", Name: "Ana"}}, h.listDrafts(t)[0].Members)

	assert.Equal(t, msgChoiceExpired, h.press(t, "toggle:9").Text)

	h.send(t, "/cancel")
	assert.Equal(t, []entity.Collaborator{{ID: "m1", Name: "Ana"}}, h.listDrafts(t)[0].Members)
}

func TestLabelSelectionFinish(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 1)

	h.board.On("Labels", mock.Anything, "board1").Return([]board.Label{{ID: "l1", Color: "red"}}, nil)

	h.press(t, "labels:0")
	h.press(t, "toggle:0")
	h.press(t, "finish")

	assert.Contains(t, h.out.texts(), "Selected labels: red")
	assert.True(t, h.session(t).Idle())
	assert.Equal(t, []entity.Collaborator{{ID: "l1", Name: "red"}}, h.listDrafts(t)[0].Labels)
}

func TestSelectionRemoteFailure(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 1)

	h.board.On("Members", mock.Anything, "board1").Return(nil, &board.RemoteError{Op: "get_members", Status: 401, Body: "invalid token"})

	p := h.press(t, "members:0")
	assert.Contains(t, p.Text, "Trello request failed")
	assert.True(t, h.session(t).Idle())

	logged := h.logs.errors()
	require.NotEmpty(t, logged)
	assert.Equal(t, "CONVERSATION", logged[len(logged)-1].module)
	assert.Equal(t, "Board call failed", logged[len(logged)-1].message)
}

func TestAttachments(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 1)

	t.Run("cancel leaves the draft unmodified", func(t *testing.T) {
		before := h.listDrafts(t)

		h.press(t, "attach:0")
		h.upload(t, "art.png", "image/png", "png-bytes")
		buffered := h.session(t).PendingAttachments
		require.Len(t, buffered, 1)
		assert.Equal(t, before, h.listDrafts(t))

		h.send(t, "/cancel")
		assert.Equal(t, before, h.listDrafts(t))
		_, err := os.Stat(buffered[0])
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("leaving for another flow removes buffered files", func(t *testing.T) {
		exits := []struct {
			name  string
			leave func(t *testing.T)
		}{
			{name: "preview button", leave: func(t *testing.T) { h.press(t, "preview") }},
			{name: "preview command", leave: func(t *testing.T) { h.send(t, "/preview") }},
			{name: "edit button", leave: func(t *testing.T) { h.press(t, "edit:0") }},
		}

		for _, exit := range exits {
			t.Run(exit.name, func(t *testing.T) {
				before := h.listDrafts(t)

				h.press(t, "attach:0")
				h.upload(t, "orphan.png", "image/png", "png-bytes")
				buffered := h.session(t).PendingAttachments
				require.Len(t, buffered, 1)

				exit.leave(t)
				assert.Empty(t, h.session(t).PendingAttachments)
				_, err := os.Stat(buffered[0])
				assert.True(t, os.IsNotExist(err))
				assert.Equal(t, before, h.listDrafts(t))
			})
		}
	})

	t.Run("done flushes in one step", func(t *testing.T) {
		h.press(t, "attach:0")
		h.upload(t, "a.png", "image/png", "a")
		h.upload(t, "b.pdf", "application/pdf", "b")
		assert.Empty(t, h.listDrafts(t)[0].Attachments)

		h.send(t, "/done")
		assert.True(t, h.session(t).Idle())

		attachments := h.listDrafts(t)[0].Attachments
		require.Len(t, attachments, 2)
		for _, path := range attachments {
			_, err := os.Stat(path)
			assert.NoError(t, err)
		}
	})

	t.Run("done without files", func(t *testing.T) {
		h.press(t, "attach:0")
		assert.Equal(t, msgNoAttachments, h.send(t, "/done").Text)
		assert.Len(t, h.listDrafts(t)[0].Attachments, 2)
	})
}

func TestSearchAndCardActions(t *testing.T) {
	h := newHarness(t)
	h.configure(t)

	h.board.On("Cards", mock.Anything, "board1").Return([]board.Card{
		{ID: "c1", Name: "12345 | JOSÉ"},
		{ID: "c2", Name: "99999 | Maria"},
		{ID: "c3", Name: "54321 | jose carlos"},
	}, nil)
	h.board.On("AddComment", mock.Anything, "c3", "ready for pickup").Return(nil)
	h.board.On("CreateChecklist", mock.Anything, "c1", "Finishing").Return(&board.Checklist{ID: "k1"}, nil)
	h.board.On("AddCheckItem", mock.Anything, "k1", "sand").Return(nil)
	h.board.On("AddCheckItem", mock.Anything, "k1", "paint").Return(errors.New("boom"))

	assert.Equal(t, msgAskSearchTerm, h.send(t, "/search").Text)
	p := h.send(t, "jose")
	require.Len(t, p.Choices, 2)
	assert.Equal(t, "card:1", p.Choices[1][0].Data)

	assert.Equal(t, msgNothingToCancel, h.send(t, "/cancel").Text)

	h.press(t, "card:1")
	assert.Equal(t, "c3", h.session(t).CardID)
	assert.Equal(t, msgAskComment, h.press(t, "cardcomment").Text)
	assert.Equal(t, "Comment added to 54321 | jose carlos.", h.send(t, "ready for pickup").Text)

	h.press(t, "card:0")
	h.send(t, "/addchk")
	h.send(t, "Finishing")
	p = h.send(t, "sand -- paint")
	assert.Contains(t, p.Text, "with 1 item(s)")
	assert.Contains(t, p.Text, "1 item(s) failed")

	assert.Equal(t, msgSearchExpired, h.press(t, "card:7").Text)
	assert.Equal(t, "No cards match \"zzz\".", h.send(t, "/search zzz").Text)
	h.board.AssertExpectations(t)
}

func TestCancelForgetsViewedCard(t *testing.T) {
	h := newHarness(t)
	h.configure(t)

	h.board.On("Cards", mock.Anything, "board1").Return([]board.Card{{ID: "c1", Name: "12345 | ACME"}}, nil)

	h.send(t, "/search acme")
	h.press(t, "card:0")
	require.Equal(t, "c1", h.session(t).CardID)
	require.True(t, h.session(t).Idle())

	assert.Equal(t, msgCancelled, h.send(t, "/cancel").Text)
	assert.Empty(t, h.session(t).CardID)

	assert.Equal(t, msgNoDrafts, h.send(t, "/addchk").Text)
	h.board.AssertNotCalled(t, "CreateChecklist", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommit(t *testing.T) {
	h := newHarness(t)
	h.configure(t)

	assert.Equal(t, msgNoDrafts, h.send(t, "/commit").Text)
	assert.Equal(t, 0, h.committer.calls)

	h.seedDrafts(t, 2)
	h.committer.lines = []string{"✅ one", "❌ two"}
	h.committer.report = &entity.CommitReport{
		Created: []string{"one"},
		Failed:  []entity.CommitFailure{{Name: "two", Reason: "board create_card failed: status 400: bad"}},
	}

	h.press(t, "commit")
	texts := h.out.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, "Creating 2 card(s)...", texts[0])
	assert.Equal(t, "✅ one", texts[1])
	assert.Equal(t, "❌ two", texts[2])
	assert.Contains(t, texts[3], "Done: 1 created, 1 failed.")
	assert.Contains(t, texts[3], "- two: board create_card failed")
}

func TestCommitAbortedKeepsDrafts(t *testing.T) {
	h := newHarness(t)
	h.configure(t)
	h.seedDrafts(t, 1)
	h.committer.err = errors.New("list \"🚨 PEDIDOS SEM ARTE\" not found on board")

	p := h.send(t, "/commit")
	assert.Contains(t, p.Text, "Commit aborted, drafts were kept")
	assert.Len(t, h.listDrafts(t), 1)
}

func TestSessionsArePerOperator(t *testing.T) {
	h := newHarness(t)
	h.configure(t)

	h.send(t, "/order")
	other := &recorder{op: 2002}
	require.NoError(t, h.svc.Handle(context.Background(), TextEvent("/cancel"), other))

	assert.Equal(t, msgNothingToCancel, other.last().Text)
	assert.Equal(t, ModeCollecting, h.session(t).Mode)
}
