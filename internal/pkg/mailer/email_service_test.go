package mailer

import (
	"testing"
	"time"

	"order-card-bot/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestReportBody(t *testing.T) {
	report := &entity.CommitReport{
		OperatorID: 7,
		ListName:   "Pedidos",
		Created:    []string{"123 | <ACME>"},
		Failed:     []entity.CommitFailure{{Name: "456 | Bob", Reason: "status 400"}},
		StartedAt:  time.Date(2024, 12, 25, 9, 30, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 12, 25, 9, 31, 0, 0, time.UTC),
	}

	body := ReportBody(report)
	assert.Contains(t, body, "123 | &lt;ACME&gt;")
	assert.Contains(t, body, "456 | Bob: status 400")
	assert.Contains(t, body, "25/12/2024 09:30")
	assert.Equal(t, "Cards created: 1 of 2", ReportSubject(report))
}

func TestReportBody_OmitsEmptySections(t *testing.T) {
	body := ReportBody(&entity.CommitReport{Created: []string{"only"}})
	assert.NotContains(t, body, "Failed")
	assert.Contains(t, body, "Created")
}
