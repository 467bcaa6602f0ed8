package service

import (
	"context"
	"fmt"

	"order-card-bot/internal/pkg/logger"
	"order-card-bot/internal/pkg/mailer"
	"order-card-bot/pkg/events"
)

const notifierDurable = "commit-report-mailer"

type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler func(ctx context.Context, event events.Event) error) error
}

type INotificationService interface {
	Start(ctx context.Context) error
}

type notificationService struct {
	subscriber  EventSubscriber
	mailer      mailer.IEmailService
	reportEmail string
	logger      logger.ILogger
}

// NewNotificationService e-mails every COMMIT_FINISHED event delivered by NATS.
func NewNotificationService(subscriber EventSubscriber, emailService mailer.IEmailService, reportEmail string, log logger.ILogger) INotificationService {
	return &notificationService{
		subscriber:  subscriber,
		mailer:      emailService,
		reportEmail: reportEmail,
		logger:      log,
	}
}

func (s *notificationService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, events.CommitFinished, notifierDurable, s.handle)
}

func (s *notificationService) handle(ctx context.Context, event events.Event) error {
	report, err := reportFromData(event.Payload())
	if err != nil {
		// a malformed report will never decode, so it is dropped instead of redelivered
		s.logger.Error(reportModule, "Dropping malformed commit event", map[string]interface{}{"error": err})
		return nil
	}
	if s.mailer == nil || s.reportEmail == "" {
		return nil
	}
	if err := s.mailer.SendCommitReport(s.reportEmail, report); err != nil {
		return fmt.Errorf("mail commit report for operator %d: %w", report.OperatorID, err)
	}
	s.logger.Info(reportModule, "Commit report e-mailed", map[string]interface{}{
		"operator_id": report.OperatorID,
		"to":          s.reportEmail,
	})
	return nil
}
