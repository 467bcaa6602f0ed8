// Package boardtest provides a testify mock of board.Client.
package boardtest

import (
	"context"

	"order-card-bot/pkg/board"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

var _ board.Client = (*MockClient)(nil)

// Factory returns a board.Factory that always hands out m.
func (m *MockClient) Factory() board.Factory {
	return func(apiKey, token string) board.Client { return m }
}

func (m *MockClient) CreateCard(ctx context.Context, req board.CardRequest) (*board.Card, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Card), args.Error(1)
}

func (m *MockClient) CreateChecklist(ctx context.Context, cardID, name string) (*board.Checklist, error) {
	args := m.Called(ctx, cardID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Checklist), args.Error(1)
}

func (m *MockClient) AddCheckItem(ctx context.Context, checklistID, name string) error {
	return m.Called(ctx, checklistID, name).Error(0)
}

func (m *MockClient) AddComment(ctx context.Context, cardID, text string) error {
	return m.Called(ctx, cardID, text).Error(0)
}

func (m *MockClient) AddMember(ctx context.Context, cardID, memberID string) error {
	return m.Called(ctx, cardID, memberID).Error(0)
}

func (m *MockClient) AddLabel(ctx context.Context, cardID, labelID string) error {
	return m.Called(ctx, cardID, labelID).Error(0)
}

func (m *MockClient) UploadAttachment(ctx context.Context, cardID, localPath string) error {
	return m.Called(ctx, cardID, localPath).Error(0)
}

func (m *MockClient) Lists(ctx context.Context, boardID string) ([]board.List, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]board.List), args.Error(1)
}

func (m *MockClient) Members(ctx context.Context, boardID string) ([]board.Member, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]board.Member), args.Error(1)
}

func (m *MockClient) Labels(ctx context.Context, boardID string) ([]board.Label, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]board.Label), args.Error(1)
}

func (m *MockClient) Cards(ctx context.Context, boardID string) ([]board.Card, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]board.Card), args.Error(1)
}
