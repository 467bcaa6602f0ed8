package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"order-card-bot/internal/entity"
)

// SplitChecklistItems splits text on delimiter and drops segments that are blank after trimming.
func SplitChecklistItems(text, delimiter string) []string {
	var items []string
	for _, part := range strings.Split(text, delimiter) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// addChecklistCommand handles /addchk [n]: draft n, else the selected card, else a draft chooser.
func (s *Service) addChecklistCommand(t *turn, args string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil {
		return s.startDraftChecklist(t, n-1)
	}
	if t.sess.CardID != "" {
		return s.startCardChecklist(t)
	}

	drafts, err := s.drafts.List(t.ctx, t.sess.OperatorID)
	if err != nil {
		return s.storageFailed(t, err)
	}
	if len(drafts) == 0 {
		return t.say(msgNoDrafts)
	}

	rows := make([][]Choice, 0, len(drafts))
	for i, d := range drafts {
		rows = append(rows, []Choice{{Label: fmt.Sprintf("#%d %s", i+1, d.Title), Data: fmt.Sprintf("checklist:%d", i)}})
	}
	return t.ask(msgChooseDraft, rows)
}

func (s *Service) startDraftChecklist(t *turn, index int) error {
	if _, ok, err := s.loadDraft(t, index); !ok {
		return err
	}

	s.leaveFlow(t)
	t.sess.enter(ModeChecklist, StageAwaitingName)
	t.sess.DraftIndex = index
	return t.say(msgAskChecklistName)
}

func (s *Service) startCardChecklist(t *turn) error {
	if t.sess.CardID == "" {
		return t.say(msgSearchExpired)
	}
	cardID, cardName := t.sess.CardID, t.sess.CardName

	s.leaveFlow(t)
	t.sess.enter(ModeChecklist, StageAwaitingName)
	t.sess.CardID, t.sess.CardName = cardID, cardName
	return t.say(msgAskChecklistName)
}

func (s *Service) checklistStep(t *turn, text string) error {
	switch t.sess.Stage {
	case StageAwaitingName:
		name := strings.TrimSpace(text)
		if name == "" {
			return t.say(msgEmptyChecklist)
		}
		t.sess.PendingChecklistName = name
		t.sess.Stage = StageAwaitingItems
		return t.say(msgAskItems)

	case StageAwaitingItems:
		items := SplitChecklistItems(text, checklistDelimiter)
		if len(items) == 0 {
			return t.say(msgNoItems)
		}
		checklist := entity.Checklist{Name: t.sess.PendingChecklistName, Items: items}
		if t.sess.CardID != "" {
			return s.createCardChecklist(t, checklist)
		}
		return s.addDraftChecklist(t, checklist)

	default:
		s.leaveFlow(t)
		return t.say(msgHelp)
	}
}

func (s *Service) addDraftChecklist(t *turn, checklist entity.Checklist) error {
	index := t.sess.DraftIndex
	d, ok, err := s.loadDraft(t, index)
	if !ok {
		return err
	}
	d.Checklists = append(d.Checklists, checklist)
	if ok, err := s.saveDraft(t, index, d); !ok {
		return err
	}

	s.leaveFlow(t)
	if err := t.say(fmt.Sprintf("Checklist %q added with %d item(s).", checklist.Name, len(checklist.Items))); err != nil {
		return err
	}
	return t.ask(formatDraft(index, d), editMenu(index))
}

// createCardChecklist writes the checklist straight to an existing card. Item failures are counted, not fatal.
func (s *Service) createCardChecklist(t *turn, checklist entity.Checklist) error {
	client, _, ok, err := s.boardClient(t)
	if !ok {
		return err
	}

	created, err := client.CreateChecklist(t.ctx, t.sess.CardID, checklist.Name)
	if err != nil {
		return s.remoteFailed(t, "create_checklist", err)
	}

	failed := 0
	for _, item := range checklist.Items {
		if err := client.AddCheckItem(t.ctx, created.ID, item); err != nil {
			failed++
			s.logger.Warn(module, "Check item failed", map[string]interface{}{
				"operator_id": t.sess.OperatorID,
				"card_id":     t.sess.CardID,
				"item":        item,
				"error":       err.Error(),
			})
		}
	}

	name := t.sess.CardName
	s.leaveFlow(t)
	msg := fmt.Sprintf("Checklist %q created on %s with %d item(s).", checklist.Name, name, len(checklist.Items)-failed)
	if failed > 0 {
		msg += fmt.Sprintf(" %d item(s) failed.", failed)
	}
	return t.say(msg)
}
