package conversation

import (
	"errors"
	"fmt"
	"os"
	"time"

	"order-card-bot/internal/entity"
	"order-card-bot/pkg/document"
	"order-card-bot/pkg/extractor"
)

// startCollecting opens a fresh batch; drafts left from an abandoned batch are dropped.
func (s *Service) startCollecting(t *turn) error {
	s.leaveFlow(t)

	if err := s.drafts.Clear(t.ctx, t.sess.OperatorID); err != nil {
		return s.storageFailed(t, err)
	}
	t.sess.enter(ModeCollecting, StageNone)
	return t.say(msgCollecting)
}

// collectDocument turns one PDF into a seeded draft. Failures leave the batch open.
func (s *Service) collectDocument(t *turn, file FileRef) error {
	if !document.IsPDF(file.Name, file.MimeType) {
		return t.say(msgNotPDF)
	}

	path, err := s.downloader.Download(t.ctx, file, s.operatorDir(t.sess.OperatorID))
	if err != nil {
		s.logger.Error(module, "Document download failed", map[string]interface{}{
			"operator_id": t.sess.OperatorID,
			"file":        file.Name,
			"error":       err.Error(),
		})
		return t.say(fmt.Sprintf("Could not download %s. Send it again.", file.Name))
	}
	defer os.Remove(path)

	seed, err := s.extract(t, path)
	if err != nil {
		s.logger.Warn(module, "Document extraction failed", map[string]interface{}{
			"operator_id": t.sess.OperatorID,
			"file":        file.Name,
			"error":       err.Error(),
		})
		return t.say(fmt.Sprintf("Could not extract %s: %s", file.Name, extractionReason(err)))
	}

	draft := draftFromSeed(seed, file.Name)
	index, err := s.drafts.Append(t.ctx, t.sess.OperatorID, draft)
	if err != nil {
		s.logger.Error(module, "Draft append failed", map[string]interface{}{
			"operator_id": t.sess.OperatorID,
			"file":        file.Name,
			"error":       err.Error(),
		})
		return t.say(msgStorageFailed)
	}

	s.logger.Info(module, "Draft created from document", map[string]interface{}{
		"operator_id": t.sess.OperatorID,
		"file":        file.Name,
		"index":       index,
		"items":       len(seed.Items),
	})
	return t.say(fmt.Sprintf("Draft #%d created: %s\nSend another PDF or /done.", index+1, draft.Title))
}

func (s *Service) extract(t *turn, path string) (*extractor.Seed, error) {
	text, err := s.documents.FirstPageText(t.ctx, path)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(text)
}

func extractionReason(err error) string {
	var extractionErr *extractor.ExtractionError
	switch {
	case errors.Is(err, document.ErrNoText):
		return "the document has no readable text"
	case errors.As(err, &extractionErr):
		return extractionErr.Reason
	default:
		return "the file could not be read as a PDF"
	}
}

func draftFromSeed(seed *extractor.Seed, source string) *entity.Draft {
	d := &entity.Draft{
		Title:          seed.Title,
		Body:           seed.Body,
		Items:          append([]string(nil), seed.Items...),
		SourceDocument: source,
		CreatedAt:      time.Now().UTC(),
	}
	if seed.Observations != extractor.Unknown {
		d.Observations = seed.Observations
	}
	if seed.DueDate != extractor.Unknown {
		d.DueRaw = seed.DueDate
		if iso, err := extractor.NormalizeDate(seed.DueDate); err == nil {
			d.DueISO = iso
		}
	}
	return d
}
