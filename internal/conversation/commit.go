package conversation

import (
	"fmt"
)

func (s *Service) preview(t *turn) error {
	drafts, err := s.drafts.List(t.ctx, t.sess.OperatorID)
	if err != nil {
		return s.storageFailed(t, err)
	}
	if len(drafts) == 0 {
		return t.say(msgNoDrafts)
	}

	for i, d := range drafts {
		if err := t.ask(formatDraft(i, d), [][]Choice{{{Label: "Edit", Data: fmt.Sprintf("edit:%d", i)}}}); err != nil {
			return err
		}
	}
	return t.ask(fmt.Sprintf("%d draft(s) ready.", len(drafts)), [][]Choice{{
		{Label: "Preview again", Data: "preview"},
		{Label: "Create all", Data: "commit"},
	}})
}

// commit hands every draft to the pipeline and streams its progress back.
func (s *Service) commit(t *turn) error {
	s.leaveFlow(t)

	drafts, err := s.drafts.List(t.ctx, t.sess.OperatorID)
	if err != nil {
		return s.storageFailed(t, err)
	}
	if len(drafts) == 0 {
		return t.say(msgNoDrafts)
	}
	if err := t.say(fmt.Sprintf(msgCommitStarted, len(drafts))); err != nil {
		return err
	}

	report, err := s.committer.CommitAll(t.ctx, t.sess.OperatorID, func(line string) {
		if err := t.say(line); err != nil {
			s.logger.Warn(module, "Progress line not delivered", map[string]interface{}{
				"operator_id": t.sess.OperatorID,
				"error":       err.Error(),
			})
		}
	})
	if err != nil {
		s.logger.Error(module, "Commit run aborted", map[string]interface{}{
			"operator_id": t.sess.OperatorID,
			"error":       err.Error(),
		})
		return t.say(fmt.Sprintf(msgCommitAborted, err.Error()))
	}

	return t.say(formatReport(report))
}
