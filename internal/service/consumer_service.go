package service

import (
	"context"
	"encoding/json"
	"time"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/logger"
	"order-card-bot/internal/pkg/mailer"
	"order-card-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const reportModule = "COMMIT_REPORT"

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	audit       logger.ILogger
	events      EventPublisher
	mailer      mailer.IEmailService
	reportEmail string
}

// NewConsumerService drains commit reports from the in-process bus.
// Each report goes to the audit log, then to NATS; when NATS cannot take it the
// report is e-mailed directly. events and emailService may be nil.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	audit logger.ILogger,
	eventPublisher EventPublisher,
	emailService mailer.IEmailService,
	reportEmail string,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		audit:       audit,
		events:      eventPublisher,
		mailer:      emailService,
		reportEmail: reportEmail,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// reports are informational, so every message is acked
	defer msg.Ack()

	var report entity.CommitReport
	if err := json.Unmarshal(msg.Payload, &report); err != nil {
		cs.audit.Error(reportModule, "Failed to decode commit report", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		return
	}

	cs.audit.Info(reportModule, "Commit run finished", map[string]interface{}{
		"operator_id": report.OperatorID,
		"list":        report.ListName,
		"created":     report.Created,
		"failed":      report.Failed,
		"duration_ms": report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	})

	if cs.forward(ctx, &report) {
		return
	}
	cs.mail(&report)
}

func (cs *consumerService) forward(ctx context.Context, report *entity.CommitReport) bool {
	if cs.events == nil {
		return false
	}

	data, err := reportData(report)
	if err != nil {
		cs.audit.Error(reportModule, "Failed to encode commit report event", map[string]interface{}{"error": err})
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cs.events.Publish(ctx, events.NewCommitFinished(data, report.FinishedAt)); err != nil {
		cs.audit.Warn(reportModule, "Commit report not forwarded to NATS", map[string]interface{}{
			"operator_id": report.OperatorID,
			"error":       err.Error(),
		})
		return false
	}
	return true
}

func (cs *consumerService) mail(report *entity.CommitReport) {
	if cs.mailer == nil || cs.reportEmail == "" {
		return
	}
	if err := cs.mailer.SendCommitReport(cs.reportEmail, report); err != nil {
		cs.audit.Error(reportModule, "Failed to e-mail commit report", map[string]interface{}{
			"operator_id": report.OperatorID,
			"error":       err,
		})
	}
}

func reportData(report *entity.CommitReport) (map[string]interface{}, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	err = json.Unmarshal(raw, &data)
	return data, err
}

func reportFromData(data map[string]interface{}) (*entity.CommitReport, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var report entity.CommitReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
