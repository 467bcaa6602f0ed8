package conversation

import (
	"fmt"

	"order-card-bot/internal/entity"
)

// startSelection fetches the board's members or labels and shows them as toggles.
func (s *Service) startSelection(t *turn, index int, stage Stage) error {
	d, ok, err := s.loadDraft(t, index)
	if !ok {
		return err
	}
	client, creds, ok, err := s.boardClient(t)
	if !ok {
		return err
	}

	var options []choiceOption
	if stage == StageMembers {
		members, err := client.Members(t.ctx, creds.BoardID)
		if err != nil {
			return s.remoteFailed(t, "get_members", err)
		}
		for _, m := range members {
			options = append(options, choiceOption{ID: m.ID, Name: m.DisplayName()})
		}
	} else {
		labels, err := client.Labels(t.ctx, creds.BoardID)
		if err != nil {
			return s.remoteFailed(t, "get_labels", err)
		}
		for _, l := range labels {
			options = append(options, choiceOption{ID: l.ID, Name: l.DisplayName()})
		}
	}

	if len(options) == 0 {
		return t.say(fmt.Sprintf("The board has no %s to choose from.", stage))
	}

	s.leaveFlow(t)
	t.sess.enter(ModeSelecting, stage)
	t.sess.DraftIndex = index
	t.sess.Choices = options
	return t.ask(selectionTitle(stage, d), selectionButtons(options, selectedSet(d, stage)))
}

// toggle flips one option and persists the draft right away.
func (s *Service) toggle(t *turn, j int) error {
	if t.sess.Mode != ModeSelecting || j < 0 || j >= len(t.sess.Choices) {
		return t.say(msgChoiceExpired)
	}

	index, stage := t.sess.DraftIndex, t.sess.Stage
	d, ok, err := s.loadDraft(t, index)
	if !ok {
		return err
	}

	option := t.sess.Choices[j]
	item := entity.Collaborator{ID: option.ID, Name: option.Name}
	if stage == StageMembers {
		d.Members, _ = entity.ToggleCollaborator(d.Members, item)
	} else {
		d.Labels, _ = entity.ToggleCollaborator(d.Labels, item)
	}
	if ok, err := s.saveDraft(t, index, d); !ok {
		return err
	}

	return t.ask(selectionTitle(stage, d), selectionButtons(t.sess.Choices, selectedSet(d, stage)))
}

func (s *Service) finishSelection(t *turn) error {
	if t.sess.Mode != ModeSelecting {
		return t.say(msgNothingToFinish)
	}

	index, stage := t.sess.DraftIndex, t.sess.Stage
	s.leaveFlow(t)

	d, ok, err := s.loadDraft(t, index)
	if !ok {
		return err
	}
	selected := selectedSet(d, stage)
	summary := "none"
	if len(selected) > 0 {
		summary = collaboratorNames(selected)
	}
	if err := t.say(fmt.Sprintf("Selected %s: %s", stage, summary)); err != nil {
		return err
	}
	return t.ask(formatDraft(index, d), editMenu(index))
}

func selectedSet(d *entity.Draft, stage Stage) []entity.Collaborator {
	if stage == StageMembers {
		return d.Members
	}
	return d.Labels
}

func selectionTitle(stage Stage, d *entity.Draft) string {
	return fmt.Sprintf("Choose %s for %s:", stage, d.Title)
}

func selectionButtons(options []choiceOption, selected []entity.Collaborator) [][]Choice {
	rows := make([][]Choice, 0, len(options)+1)
	for j, o := range options {
		mark := "⬜ "
		if entity.ContainsCollaborator(selected, o.ID) {
			mark = "✅ "
		}
		rows = append(rows, []Choice{{Label: mark + o.Name, Data: fmt.Sprintf("toggle:%d", j)}})
	}
	return append(rows, []Choice{{Label: "Finish", Data: "finish"}})
}
