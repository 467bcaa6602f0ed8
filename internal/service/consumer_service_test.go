package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/logger"
	"order-card-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportTopic = "commit_reports"

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []*entity.CommitReport
	to    []string
	err   error
	calls int
}

func (m *recordingMailer) SendCommitReport(toEmail string, report *entity.CommitReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, report)
	m.to = append(m.to, toEmail)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func startConsumer(t *testing.T, ev EventPublisher, mail *recordingMailer) IPublisherService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	consumer := NewConsumerService(pubSub, reportTopic, logger.NewNopLogger(), ev, mail, "ops@example.com")
	require.NoError(t, consumer.Consume(ctx))
	return NewPublisherService(reportTopic, pubSub)
}

func sampleReport() *entity.CommitReport {
	return &entity.CommitReport{
		OperatorID: operator,
		ListName:   "Pedidos",
		Created:    []string{"A"},
		Failed:     []entity.CommitFailure{{Name: "B", Reason: "status 400"}},
		StartedAt:  time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 12, 25, 9, 1, 0, 0, time.UTC),
	}
}

func publishReport(t *testing.T, pub IPublisherService) {
	t.Helper()
	svc := &commitService{publisher: pub, logger: logger.NewNopLogger()}
	svc.publish(context.Background(), sampleReport())
}

func TestConsumer_ForwardsToNATS(t *testing.T) {
	ev := &recordingEvents{}
	mail := &recordingMailer{}
	pub := startConsumer(t, ev, mail)

	publishReport(t, pub)

	assert.Eventually(t, func() bool { return ev.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, events.CommitFinished, ev.events[0].EventType())
	assert.Equal(t, "Pedidos", ev.events[0].Payload()["list_name"])
	assert.Zero(t, mail.count())
}

func TestConsumer_MailsWhenNATSUnavailable(t *testing.T) {
	ev := &recordingEvents{err: errors.New("nats is not connected")}
	mail := &recordingMailer{}
	pub := startConsumer(t, ev, mail)

	publishReport(t, pub)

	assert.Eventually(t, func() bool { return mail.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"ops@example.com"}, mail.to)
	assert.Equal(t, []string{"A"}, mail.sent[0].Created)
}

func TestNotificationService_Handle(t *testing.T) {
	data, err := reportData(sampleReport())
	require.NoError(t, err)
	event := events.NewCommitFinished(data, time.Now())

	t.Run("mails the decoded report", func(t *testing.T) {
		mail := &recordingMailer{}
		svc := NewNotificationService(nil, mail, "ops@example.com", logger.NewNopLogger()).(*notificationService)

		require.NoError(t, svc.handle(context.Background(), event))
		require.Len(t, mail.sent, 1)
		assert.Equal(t, operator, mail.sent[0].OperatorID)
		assert.Equal(t, "status 400", mail.sent[0].Failed[0].Reason)
	})

	t.Run("mail failure asks for redelivery", func(t *testing.T) {
		mail := &recordingMailer{err: errors.New("smtp down")}
		svc := NewNotificationService(nil, mail, "ops@example.com", logger.NewNopLogger()).(*notificationService)

		assert.Error(t, svc.handle(context.Background(), event))
	})

	t.Run("no recipient configured", func(t *testing.T) {
		mail := &recordingMailer{}
		svc := NewNotificationService(nil, mail, "", logger.NewNopLogger()).(*notificationService)

		assert.NoError(t, svc.handle(context.Background(), event))
		assert.Zero(t, mail.calls)
	})
}
