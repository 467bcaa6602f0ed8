package conversation

import (
	"fmt"
	"strings"

	"order-card-bot/internal/entity"
	"order-card-bot/pkg/extractor"
)

func (s *Service) showEditMenu(t *turn, index int) error {
	d, ok, err := s.loadDraft(t, index)
	if !ok {
		return err
	}
	return t.ask(formatDraft(index, d), editMenu(index))
}

func (s *Service) startFieldEdit(t *turn, index int, stage Stage, question string) error {
	if _, ok, err := s.loadDraft(t, index); !ok {
		return err
	}

	s.leaveFlow(t)
	t.sess.enter(ModeEditField, stage)
	t.sess.DraftIndex = index
	return t.say(question)
}

func (s *Service) startCardComment(t *turn) error {
	if t.sess.CardID == "" {
		return t.say(msgSearchExpired)
	}
	cardID, cardName := t.sess.CardID, t.sess.CardName

	s.leaveFlow(t)
	t.sess.enter(ModeEditField, StageAwaitingComment)
	t.sess.CardID, t.sess.CardName = cardID, cardName
	return t.say(msgAskComment)
}

// fieldEditStep validates one value. Invalid input re-prompts without leaving the stage.
func (s *Service) fieldEditStep(t *turn, text string) error {
	value := strings.TrimSpace(text)

	if t.sess.CardID != "" {
		if value == "" {
			return t.say(msgEmptyComment)
		}
		return s.commentOnCard(t, value)
	}

	index := t.sess.DraftIndex
	switch t.sess.Stage {
	case StageAwaitingDate:
		iso, err := extractor.NormalizeDate(value)
		if err != nil {
			return t.say(msgInvalidDate)
		}
		d, ok, err := s.loadDraft(t, index)
		if !ok {
			return err
		}
		d.DueRaw = strings.ReplaceAll(value, "-", "/")
		d.DueISO = iso
		return s.finishFieldEdit(t, index, d, "Due date updated.")

	case StageAwaitingComment:
		if value == "" {
			return t.say(msgEmptyComment)
		}
		d, ok, err := s.loadDraft(t, index)
		if !ok {
			return err
		}
		d.Comment = value
		return s.finishFieldEdit(t, index, d, "Comment saved.")

	case StageAwaitingTitle:
		if value == "" {
			return t.say(msgEmptyTitle)
		}
		d, ok, err := s.loadDraft(t, index)
		if !ok {
			return err
		}
		d.Title = value
		return s.finishFieldEdit(t, index, d, "Title updated.")

	case StageAwaitingBody:
		if value == "" {
			return t.say(msgEmptyBody)
		}
		d, ok, err := s.loadDraft(t, index)
		if !ok {
			return err
		}
		d.Body = strings.TrimRight(text, " \t\n")
		return s.finishFieldEdit(t, index, d, "Description updated.")

	default:
		s.leaveFlow(t)
		return t.say(msgHelp)
	}
}

func (s *Service) finishFieldEdit(t *turn, index int, d *entity.Draft, confirmation string) error {
	if ok, err := s.saveDraft(t, index, d); !ok {
		return err
	}
	s.leaveFlow(t)
	if err := t.say(confirmation); err != nil {
		return err
	}
	return t.ask(formatDraft(index, d), editMenu(index))
}

func (s *Service) commentOnCard(t *turn, text string) error {
	client, _, ok, err := s.boardClient(t)
	if !ok {
		return err
	}
	if err := client.AddComment(t.ctx, t.sess.CardID, text); err != nil {
		return s.remoteFailed(t, "add_comment", err)
	}

	name := t.sess.CardName
	s.leaveFlow(t)
	return t.say(fmt.Sprintf("Comment added to %s.", name))
}
