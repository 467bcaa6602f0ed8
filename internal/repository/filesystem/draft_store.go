package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/repository/contract"
)

const (
	draftPrefix = "draft_"
	draftSuffix = ".yaml"
)

// DraftStore keeps one yaml file per draft under <root>/drafts/<operator>/.
// File names embed a zero-padded sequence number, so lexical order is creation order.
type DraftStore struct {
	root  string
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewDraftStore(dataDir string) *DraftStore {
	return &DraftStore{
		root:  filepath.Join(dataDir, "drafts"),
		locks: make(map[int64]*sync.Mutex),
	}
}

var _ contract.DraftStore = (*DraftStore)(nil)

func (s *DraftStore) lock(operatorID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[operatorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[operatorID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *DraftStore) operatorDir(operatorID int64) string {
	return filepath.Join(s.root, strconv.FormatInt(operatorID, 10))
}

func draftFileName(sequence int) string {
	return fmt.Sprintf("%s%06d%s", draftPrefix, sequence, draftSuffix)
}

// draftFiles returns the operator's draft file names sorted lexically.
func (s *DraftStore) draftFiles(operatorID int64) ([]string, error) {
	entries, err := os.ReadDir(s.operatorDir(operatorID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, draftPrefix) || !strings.HasSuffix(name, draftSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func sequenceOf(name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, draftPrefix), draftSuffix))
	return n, err == nil
}

func (s *DraftStore) Append(ctx context.Context, operatorID int64, draft *entity.Draft) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer s.lock(operatorID)()

	names, err := s.draftFiles(operatorID)
	if err != nil {
		return 0, &contract.StorageError{Op: "append", OperatorID: operatorID, Err: err}
	}

	next := 0
	for _, name := range names {
		if seq, ok := sequenceOf(name); ok && seq >= next {
			next = seq + 1
		}
	}

	stored := draft.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	path := filepath.Join(s.operatorDir(operatorID), draftFileName(next))
	if err := writeYAML(path, stored); err != nil {
		return 0, &contract.StorageError{Op: "append", OperatorID: operatorID, Err: err}
	}
	return len(names), nil
}

func (s *DraftStore) List(ctx context.Context, operatorID int64) ([]*entity.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.lock(operatorID)()

	names, err := s.draftFiles(operatorID)
	if err != nil {
		return nil, &contract.StorageError{Op: "list", OperatorID: operatorID, Err: err}
	}

	drafts := make([]*entity.Draft, 0, len(names))
	for _, name := range names {
		var d entity.Draft
		if err := readYAML(filepath.Join(s.operatorDir(operatorID), name), &d); err != nil {
			return nil, &contract.StorageError{Op: "list", OperatorID: operatorID, Err: err}
		}
		drafts = append(drafts, &d)
	}
	return drafts, nil
}

func (s *DraftStore) Replace(ctx context.Context, operatorID int64, index int, draft *entity.Draft) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	defer s.lock(operatorID)()

	names, err := s.draftFiles(operatorID)
	if err != nil {
		return false, &contract.StorageError{Op: "replace", OperatorID: operatorID, Err: err}
	}
	if index < 0 || index >= len(names) {
		return false, nil
	}

	path := filepath.Join(s.operatorDir(operatorID), names[index])
	if err := writeYAML(path, draft); err != nil {
		return false, &contract.StorageError{Op: "replace", OperatorID: operatorID, Err: err}
	}
	return true, nil
}

func (s *DraftStore) Clear(ctx context.Context, operatorID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock(operatorID)()

	if err := os.RemoveAll(s.operatorDir(operatorID)); err != nil {
		return &contract.StorageError{Op: "clear", OperatorID: operatorID, Err: err}
	}
	return nil
}
