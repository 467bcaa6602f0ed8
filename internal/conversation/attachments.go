package conversation

import (
	"fmt"
	"os"
)

func (s *Service) startAttachments(t *turn, index int) error {
	d, ok, err := s.loadDraft(t, index)
	if !ok {
		return err
	}

	s.leaveFlow(t)
	t.sess.enter(ModeAttachments, StageNone)
	t.sess.DraftIndex = index
	return t.say(fmt.Sprintf("%s\n%s", d.Title, msgAskAttachments))
}

// collectAttachment downloads a file into the session buffer. The draft is untouched until /done.
func (s *Service) collectAttachment(t *turn, file FileRef) error {
	path, err := s.downloader.Download(t.ctx, file, s.operatorDir(t.sess.OperatorID))
	if err != nil {
		s.logger.Error(module, "Attachment download failed", map[string]interface{}{
			"operator_id": t.sess.OperatorID,
			"file":        file.Name,
			"error":       err.Error(),
		})
		return t.say(fmt.Sprintf("Could not download %s. Send it again.", file.Name))
	}

	t.sess.PendingAttachments = append(t.sess.PendingAttachments, path)
	return t.say(fmt.Sprintf("Received %s (%d pending). Send more or /done.", file.Name, len(t.sess.PendingAttachments)))
}

func (s *Service) flushAttachments(t *turn) error {
	index := t.sess.DraftIndex
	pending := t.sess.PendingAttachments
	if len(pending) == 0 {
		s.leaveFlow(t)
		return t.say(msgNoAttachments)
	}

	d, ok, err := s.loadDraft(t, index)
	if !ok {
		removeFiles(pending)
		return err
	}
	d.Attachments = append(d.Attachments, pending...)
	if ok, err := s.saveDraft(t, index, d); !ok {
		removeFiles(pending)
		return err
	}

	t.sess.PendingAttachments = nil
	s.leaveFlow(t)
	if err := t.say(fmt.Sprintf("%d attachment(s) added.", len(pending))); err != nil {
		return err
	}
	return t.ask(formatDraft(index, d), editMenu(index))
}

// leaveFlow returns the session to idle, deleting any downloads the flow buffered.
func (s *Service) leaveFlow(t *turn) {
	s.discardPendingFiles(t.sess)
	t.sess.abandon()
}

// discardPendingFiles deletes buffered downloads that never reached a draft.
func (s *Service) discardPendingFiles(sess *Session) {
	removeFiles(sess.PendingAttachments)
	sess.PendingAttachments = nil
}

func removeFiles(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
