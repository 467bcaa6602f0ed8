package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/logger"
	"order-card-bot/internal/repository/contract"
	"order-card-bot/pkg/board"
	"order-card-bot/pkg/textfold"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	commitModule = "COMMIT"

	DefaultTargetList = "🚨 PEDIDOS SEM ARTE"
)

var (
	ErrNotConfigured      = errors.New("board credentials are not configured")
	ErrTargetListNotFound = errors.New("target list not found on board")
)

type ICommitService interface {
	CommitAll(ctx context.Context, operatorID int64, progress func(line string)) (*entity.CommitReport, error)
}

type commitService struct {
	drafts      contract.DraftStore
	credentials contract.CredentialStore
	boards      board.Factory
	publisher   IPublisherService
	logger      logger.ILogger
	targetList  string
	tracer      trace.Tracer
}

// NewCommitService builds the pipeline. publisher may be nil when nobody listens for reports.
func NewCommitService(
	drafts contract.DraftStore,
	credentials contract.CredentialStore,
	boards board.Factory,
	publisher IPublisherService,
	log logger.ILogger,
	targetList string,
) ICommitService {
	if targetList == "" {
		targetList = DefaultTargetList
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &commitService{
		drafts:      drafts,
		credentials: credentials,
		boards:      boards,
		publisher:   publisher,
		logger:      log,
		targetList:  targetList,
		tracer:      otel.Tracer("order-card-bot/commit"),
	}
}

// CommitAll creates one card per stored draft, in order, and clears the store afterwards.
// It returns an error only when the run could not start; drafts are kept in that case.
// Once started, a run ignores cancellation of ctx: stopping halfway would leave drafts
// for cards that already exist. Each board call stays bounded by the client timeout.
func (s *commitService) CommitAll(ctx context.Context, operatorID int64, progress func(line string)) (*entity.CommitReport, error) {
	if progress == nil {
		progress = func(string) {}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	ctx, span := s.tracer.Start(ctx, "commit_all", trace.WithAttributes(attribute.Int64("operator.id", operatorID)))
	defer span.End()

	lookup, err := s.credentials.Find(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if !lookup.Ok() {
		return nil, ErrNotConfigured
	}
	creds := lookup.Value

	drafts, err := s.drafts.List(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	report := &entity.CommitReport{
		OperatorID: operatorID,
		ListName:   s.targetList,
		Created:    []string{},
		Failed:     []entity.CommitFailure{},
		StartedAt:  time.Now().UTC(),
	}
	if len(drafts) == 0 {
		report.FinishedAt = report.StartedAt
		return report, nil
	}

	client := s.boards(creds.APIKey, creds.Token)

	lists, err := client.Lists(ctx, creds.BoardID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target list: %w", err)
	}
	list, ok := findList(lists, s.targetList)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTargetListNotFound, s.targetList)
	}
	report.ListName = list.Name

	s.logger.Info(commitModule, "Commit run started", map[string]interface{}{
		"operator_id": operatorID,
		"drafts":      len(drafts),
		"list_id":     list.ID,
	})

	for i, draft := range drafts {
		warnings, err := s.commitDraft(ctx, client, list.ID, draft)
		if err != nil {
			report.Failed = append(report.Failed, entity.CommitFailure{Name: draft.Title, Reason: err.Error()})
			s.logger.Error(commitModule, "Card creation failed", map[string]interface{}{
				"operator_id": operatorID,
				"draft":       i,
				"title":       draft.Title,
				"error":       err,
			})
			progress(fmt.Sprintf("❌ Card %d failed: %s (%s)", i+1, draft.Title, err.Error()))
			continue
		}

		report.Created = append(report.Created, draft.Title)
		line := fmt.Sprintf("✅ Card %d created: %s", i+1, draft.Title)
		if warnings > 0 {
			line += fmt.Sprintf(" (%d extra step(s) failed)", warnings)
		}
		progress(line)
	}
	report.FinishedAt = time.Now().UTC()

	if err := s.drafts.Clear(ctx, operatorID); err != nil {
		s.logger.Error(commitModule, "Failed to clear drafts after commit", map[string]interface{}{
			"operator_id": operatorID,
			"error":       err,
		})
	} else {
		removeAttachments(drafts)
	}

	span.SetAttributes(
		attribute.Int("commit.created", len(report.Created)),
		attribute.Int("commit.failed", len(report.Failed)),
	)
	s.publish(ctx, report)
	return report, nil
}

// commitDraft creates the card and then applies every secondary step.
// Only a failed card creation is an error; the rest are counted and logged.
func (s *commitService) commitDraft(ctx context.Context, client board.Client, listID string, draft *entity.Draft) (int, error) {
	card, err := client.CreateCard(ctx, board.CardRequest{
		Name:   draft.Title,
		Desc:   draft.Body,
		ListID: listID,
		Due:    draft.DueISO,
	})
	if err != nil {
		return 0, err
	}

	warnings := 0
	warn := func(step string, err error) {
		warnings++
		s.logger.Warn(commitModule, "Secondary card step failed", map[string]interface{}{
			"card_id": card.ID,
			"title":   draft.Title,
			"step":    step,
			"error":   err.Error(),
		})
	}

	for _, cl := range draft.Checklists {
		checklist, err := client.CreateChecklist(ctx, card.ID, cl.Name)
		if err != nil {
			warn("checklist", err)
			continue
		}
		for _, item := range cl.Items {
			if err := client.AddCheckItem(ctx, checklist.ID, item); err != nil {
				warn("check_item", err)
			}
		}
	}

	if draft.Comment != "" {
		if err := client.AddComment(ctx, card.ID, draft.Comment); err != nil {
			warn("comment", err)
		}
	}

	for _, member := range draft.Members {
		if err := client.AddMember(ctx, card.ID, member.ID); err != nil {
			warn("member", err)
		}
	}

	for _, label := range draft.Labels {
		if err := client.AddLabel(ctx, card.ID, label.ID); err != nil {
			warn("label", err)
		}
	}

	for _, path := range draft.Attachments {
		if _, err := os.Stat(path); err != nil {
			warn("attachment", err)
			continue
		}
		if err := client.UploadAttachment(ctx, card.ID, path); err != nil {
			warn("attachment", err)
		}
	}

	return warnings, nil
}

func (s *commitService) publish(ctx context.Context, report *entity.CommitReport) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Error(commitModule, "Failed to encode commit report", map[string]interface{}{"error": err})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Warn(commitModule, "Failed to publish commit report", map[string]interface{}{
			"operator_id": report.OperatorID,
			"error":       err.Error(),
		})
	}
}

func findList(lists []board.List, name string) (board.List, bool) {
	for _, l := range lists {
		if textfold.Equal(l.Name, name) {
			return l, true
		}
	}
	return board.List{}, false
}

func removeAttachments(drafts []*entity.Draft) {
	for _, d := range drafts {
		for _, path := range d.Attachments {
			_ = os.Remove(path)
		}
	}
}
