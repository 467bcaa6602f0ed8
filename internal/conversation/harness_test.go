package conversation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/secret"
	"order-card-bot/internal/repository/filesystem"
	"order-card-bot/internal/repository/memory"
	"order-card-bot/pkg/board/boardtest"
	"order-card-bot/pkg/document"

	"github.com/stretchr/testify/require"
)

const testOperator int64 = 1001

const orderText = "PEDIDO Nº.: 12345\nCliente: ACME LTDA - 00123\nRetirada: 25/12/2024\n"

type recorder struct {
	op      int64
	prompts []Prompt
}

func (r *recorder) Emit(ctx context.Context, p Prompt) error {
	r.prompts = append(r.prompts, p)
	return nil
}

func (r *recorder) SourceUser() int64 {
	return r.op
}

func (r *recorder) last() Prompt {
	if len(r.prompts) == 0 {
		return Prompt{}
	}
	return r.prompts[len(r.prompts)-1]
}

func (r *recorder) texts() []string {
	out := make([]string, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p.Text)
	}
	return out
}

func (r *recorder) reset() {
	r.prompts = nil
}

// fileDownloader writes the file ID as the file content.
type fileDownloader struct {
	fail bool
}

func (d *fileDownloader) Download(ctx context.Context, file FileRef, dir string) (string, error) {
	if d.fail {
		return "", errors.New("network down")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(dir, file.Name)
	return path, os.WriteFile(path, []byte(file.ID), 0o600)
}

// plainText treats the stored file content as the document text.
type plainText struct{}

func (plainText) FirstPageText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", document.ErrNoText
	}
	return string(data), nil
}

type stubCommitter struct {
	lines  []string
	report *entity.CommitReport
	err    error
	calls  int
}

func (c *stubCommitter) CommitAll(ctx context.Context, operatorID int64, progress func(string)) (*entity.CommitReport, error) {
	c.calls++
	for _, line := range c.lines {
		progress(line)
	}
	return c.report, c.err
}

type logEntry struct {
	level, module, message string
}

// logRecorder keeps every log call the service makes.
type logRecorder struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *logRecorder) add(level, module, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, module: module, message: message})
}

func (l *logRecorder) Debug(module, message string, _ map[string]interface{}) {
	l.add("debug", module, message)
}

func (l *logRecorder) Info(module, message string, _ map[string]interface{}) {
	l.add("info", module, message)
}

func (l *logRecorder) Warn(module, message string, _ map[string]interface{}) {
	l.add("warn", module, message)
}

func (l *logRecorder) Error(module, message string, _ map[string]interface{}) {
	l.add("error", module, message)
}

func (l *logRecorder) Sync() error { return nil }

func (l *logRecorder) errors() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	svc       *Service
	sessions  *Registry
	drafts    *filesystem.DraftStore
	creds     *filesystem.CredentialStore
	board     *boardtest.MockClient
	committer *stubCommitter
	download  *fileDownloader
	out       *recorder
	logs      *logRecorder
	filesDir  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	h := &harness{
		sessions:  NewRegistry(memory.NewSessionRepository[Session](0)),
		drafts:    filesystem.NewDraftStore(dir),
		creds:     filesystem.NewCredentialStore(dir, secret.NewSealer("")),
		board:     &boardtest.MockClient{},
		committer: &stubCommitter{},
		download:  &fileDownloader{},
		out:       &recorder{op: testOperator},
		logs:      &logRecorder{},
		filesDir:  filepath.Join(dir, "files"),
	}
	h.svc = NewService(Dependencies{
		Sessions:    h.sessions,
		Drafts:      h.drafts,
		Credentials: h.creds,
		Boards:      h.board.Factory(),
		Documents:   plainText{},
		Downloader:  h.download,
		Committer:   h.committer,
		Logger:      h.logs,
		FilesDir:    h.filesDir,
	})
	return h
}

func (h *harness) configure(t *testing.T) {
	t.Helper()
	require.NoError(t, h.creds.Save(context.Background(), testOperator, &entity.Credentials{
		APIKey: "key", Token: "token", BoardID: "board1",
	}))
}

func (h *harness) send(t *testing.T, text string) Prompt {
	t.Helper()
	require.NoError(t, h.svc.Handle(context.Background(), TextEvent(text), h.out))
	return h.out.last()
}

func (h *harness) press(t *testing.T, data string) Prompt {
	t.Helper()
	require.NoError(t, h.svc.Handle(context.Background(), ButtonEvent(data), h.out))
	return h.out.last()
}

func (h *harness) upload(t *testing.T, name, mimeType, content string) Prompt {
	t.Helper()
	require.NoError(t, h.svc.Handle(context.Background(), FileEvent(FileRef{ID: content, Name: name, MimeType: mimeType}), h.out))
	return h.out.last()
}

func (h *harness) session(t *testing.T) *Session {
	t.Helper()
	s, found := h.sessions.Get(testOperator)
	require.True(t, found)
	return s
}

func (h *harness) listDrafts(t *testing.T) []*entity.Draft {
	t.Helper()
	drafts, err := h.drafts.List(context.Background(), testOperator)
	require.NoError(t, err)
	return drafts
}

// seedDrafts runs a document collection that produces n drafts and returns to idle.
func (h *harness) seedDrafts(t *testing.T, n int) {
	t.Helper()
	h.send(t, "/order")
	for i := 0; i < n; i++ {
		h.upload(t, "order.pdf", "application/pdf", orderText)
	}
	h.send(t, "/done")
	require.Len(t, h.listDrafts(t), n)
	h.out.reset()
}
