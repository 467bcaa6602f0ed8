package conversation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/logger"
	"order-card-bot/internal/pkg/oplock"
	"order-card-bot/internal/repository/contract"
	"order-card-bot/pkg/board"
	"order-card-bot/pkg/document"

	"github.com/go-playground/validator/v10"
)

const module = "CONVERSATION"

type Dependencies struct {
	Sessions    *Registry
	Drafts      contract.DraftStore
	Credentials contract.CredentialStore
	Boards      board.Factory
	Documents   document.TextSource
	Downloader  Downloader
	Committer   Committer
	Locker      oplock.Locker
	Logger      logger.ILogger
	// FilesDir receives downloaded documents and attachments, one subdirectory per operator.
	FilesDir string
}

// Service is the conversation state machine. Handle is safe for concurrent use;
// events of one operator are processed one at a time.
type Service struct {
	sessions    *Registry
	drafts      contract.DraftStore
	credentials contract.CredentialStore
	boards      board.Factory
	documents   document.TextSource
	downloader  Downloader
	committer   Committer
	locker      oplock.Locker
	logger      logger.ILogger
	validate    *validator.Validate
	filesDir    string
}

func NewService(deps Dependencies) *Service {
	locker := deps.Locker
	if locker == nil {
		locker = oplock.NewLocalLocker()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{
		sessions:    deps.Sessions,
		drafts:      deps.Drafts,
		credentials: deps.Credentials,
		boards:      deps.Boards,
		documents:   deps.Documents,
		downloader:  deps.Downloader,
		committer:   deps.Committer,
		locker:      locker,
		logger:      log,
		validate:    validator.New(),
		filesDir:    deps.FilesDir,
	}
}

// turn carries one event through the state machine.
type turn struct {
	ctx  context.Context
	sess *Session
	out  Responder
}

func (t *turn) say(text string) error {
	return t.out.Emit(t.ctx, Prompt{Text: text})
}

func (t *turn) ask(text string, choices [][]Choice) error {
	return t.out.Emit(t.ctx, Prompt{Text: text, Choices: choices})
}

// Handle applies one event for the operator behind r.
func (s *Service) Handle(ctx context.Context, ev Event, r Responder) error {
	operatorID := r.SourceUser()

	release, err := s.locker.Acquire(ctx, operatorID)
	if err != nil {
		return fmt.Errorf("acquire operator %d: %w", operatorID, err)
	}
	defer release()

	sess := s.sessions.LoadOrCreate(operatorID)
	defer s.sessions.Save(sess)

	t := &turn{ctx: ctx, sess: sess, out: r}
	return s.dispatch(t, ev)
}

func (s *Service) dispatch(t *turn, ev Event) error {
	switch ev.Kind {
	case EventCommand:
		return s.onCommand(t, ev)
	case EventButton:
		return s.onButton(t, ev)
	case EventFile:
		return s.onFile(t, ev)
	default:
		return s.onText(t, ev.Text)
	}
}

func (s *Service) onCommand(t *turn, ev Event) error {
	switch ev.Command {
	case "cancel":
		return s.cancel(t)
	case "start", "config":
		return s.startCredentials(t, ev.Command == "start")
	case "help":
		return t.say(msgHelp)
	}

	if ok, err := s.requireCredentials(t); !ok {
		return err
	}

	switch ev.Command {
	case "search":
		return s.startSearch(t, ev.Text)
	case "order":
		return s.startCollecting(t)
	case "preview":
		s.leaveFlow(t)
		return s.preview(t)
	case "commit":
		return s.commit(t)
	case "addchk":
		return s.addChecklistCommand(t, ev.Text)
	case "done":
		return s.done(t)
	default:
		return t.say(msgHelp)
	}
}

func (s *Service) onButton(t *turn, ev Event) error {
	if ok, err := s.requireCredentials(t); !ok {
		return err
	}

	name, index := ev.button()
	switch name {
	case "preview":
		s.leaveFlow(t)
		return s.preview(t)
	case "commit":
		return s.commit(t)
	case "toggle":
		return s.toggle(t, index)
	case "finish":
		return s.finishSelection(t)
	case "cardchk":
		return s.startCardChecklist(t)
	case "cardcomment":
		return s.startCardComment(t)
	}

	if index < 0 {
		return t.say(msgHelp)
	}

	switch name {
	case "edit":
		s.leaveFlow(t)
		return s.showEditMenu(t, index)
	case "date":
		return s.startFieldEdit(t, index, StageAwaitingDate, msgAskDate)
	case "comment":
		return s.startFieldEdit(t, index, StageAwaitingComment, msgAskComment)
	case "title":
		return s.startFieldEdit(t, index, StageAwaitingTitle, msgAskTitle)
	case "body":
		return s.startFieldEdit(t, index, StageAwaitingBody, msgAskBody)
	case "checklist":
		return s.startDraftChecklist(t, index)
	case "members":
		return s.startSelection(t, index, StageMembers)
	case "labels":
		return s.startSelection(t, index, StageLabels)
	case "attach":
		return s.startAttachments(t, index)
	case "card":
		return s.showCard(t, index)
	default:
		return t.say(msgHelp)
	}
}

func (s *Service) onFile(t *turn, ev Event) error {
	switch t.sess.Mode {
	case ModeCollecting:
		return s.collectDocument(t, *ev.File)
	case ModeAttachments:
		return s.collectAttachment(t, *ev.File)
	default:
		return t.say(msgIdleFile)
	}
}

func (s *Service) onText(t *turn, text string) error {
	switch t.sess.Mode {
	case ModeCredentials:
		return s.credentialStep(t, text)
	case ModeEditField:
		return s.fieldEditStep(t, text)
	case ModeChecklist:
		return s.checklistStep(t, text)
	case ModeSearch:
		return s.runSearch(t, text)
	case ModeCollecting:
		return t.say(msgCollectingHint)
	case ModeAttachments:
		return t.say(msgAttachHint)
	case ModeSelecting:
		return t.say(msgSelectHint)
	default:
		return t.say(msgHelp)
	}
}

// cancel collapses any flow to idle. Draft Store contents are left as they are.
func (s *Service) cancel(t *turn) error {
	if t.sess.Idle() && !t.sess.hasBuffers() {
		return t.say(msgNothingToCancel)
	}
	s.discardPendingFiles(t.sess)
	t.sess.Reset()
	return t.say(msgCancelled)
}

func (s *Service) done(t *turn) error {
	switch t.sess.Mode {
	case ModeCollecting:
		s.leaveFlow(t)
		return s.preview(t)
	case ModeAttachments:
		return s.flushAttachments(t)
	case ModeSelecting:
		return s.finishSelection(t)
	default:
		return t.say(msgNothingToFinish)
	}
}

// requireCredentials reports whether the operator is configured, telling them otherwise.
func (s *Service) requireCredentials(t *turn) (bool, error) {
	_, ok, err := s.loadCredentials(t)
	if err != nil || !ok {
		return false, err
	}
	return true, nil
}

func (s *Service) loadCredentials(t *turn) (*entity.Credentials, bool, error) {
	lookup, err := s.credentials.Find(t.ctx, t.sess.OperatorID)
	if err != nil {
		s.logger.Error(module, "Failed to load credentials", map[string]interface{}{
			"operator_id": t.sess.OperatorID,
			"error":       err.Error(),
		})
		return nil, false, t.say(msgStorageFailed)
	}
	if !lookup.Ok() {
		return nil, false, t.say(msgConfigureFirst)
	}
	return lookup.Value, true, nil
}

func (s *Service) boardClient(t *turn) (board.Client, *entity.Credentials, bool, error) {
	creds, ok, err := s.loadCredentials(t)
	if !ok {
		return nil, nil, false, err
	}
	return s.boards(creds.APIKey, creds.Token), creds, true, nil
}

// loadDraft returns a copy of the draft at index. A false result has already been reported.
func (s *Service) loadDraft(t *turn, index int) (*entity.Draft, bool, error) {
	drafts, err := s.drafts.List(t.ctx, t.sess.OperatorID)
	if err != nil {
		return nil, false, s.storageFailed(t, err)
	}
	if index < 0 || index >= len(drafts) {
		s.leaveFlow(t)
		return nil, false, t.say(msgDraftNotFound)
	}
	return drafts[index].Clone(), true, nil
}

// saveDraft replaces the draft at index and marks it edited.
func (s *Service) saveDraft(t *turn, index int, d *entity.Draft) (bool, error) {
	d.Edited = true
	ok, err := s.drafts.Replace(t.ctx, t.sess.OperatorID, index, d)
	if err != nil {
		return false, s.storageFailed(t, err)
	}
	if !ok {
		s.leaveFlow(t)
		return false, t.say(msgDraftNotFound)
	}
	return true, nil
}

func (s *Service) storageFailed(t *turn, err error) error {
	var storageErr *contract.StorageError
	details := map[string]interface{}{
		"operator_id": t.sess.OperatorID,
		"mode":        string(t.sess.Mode),
		"stage":       string(t.sess.Stage),
		"error":       err.Error(),
	}
	if errors.As(err, &storageErr) {
		details["op"] = storageErr.Op
	}
	s.logger.Error(module, "Draft storage failed", details)

	s.leaveFlow(t)
	return t.say(msgStorageFailed)
}

func (s *Service) remoteFailed(t *turn, op string, err error) error {
	details := map[string]interface{}{
		"operator_id": t.sess.OperatorID,
		"op":          op,
		"error":       err.Error(),
	}
	var remoteErr *board.RemoteError
	if errors.As(err, &remoteErr) {
		details["status"] = remoteErr.Status
	}
	s.logger.Error(module, "Board call failed", details)

	s.leaveFlow(t)
	return t.say(fmt.Sprintf(msgRemoteFailed, err.Error()))
}

func (s *Service) operatorDir(operatorID int64) string {
	return filepath.Join(s.filesDir, strconv.FormatInt(operatorID, 10))
}
