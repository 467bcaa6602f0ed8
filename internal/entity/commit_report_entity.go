package entity

import "time"

type CommitFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// CommitReport summarizes one commit run for one operator.
type CommitReport struct {
	OperatorID int64           `json:"operator_id"`
	ListName   string          `json:"list_name"`
	Created    []string        `json:"created"`
	Failed     []CommitFailure `json:"failed"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

func (r *CommitReport) Total() int {
	return len(r.Created) + len(r.Failed)
}
