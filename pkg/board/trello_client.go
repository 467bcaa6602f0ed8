package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.trello.com/1"

	maxErrorBody = 512
)

// Options tune every client produced by NewTrelloFactory.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	UploadTimeout time.Duration
	// RequestsPerSecond is shared by all clients of one factory; Trello allows ~10 rps per token.
	RequestsPerSecond float64
	Burst             int
}

// TrelloClient talks to the Trello REST API. Key and token travel in the Authorization
// header so they never appear in request URLs or the errors that quote them.
type TrelloClient struct {
	baseURL       string
	apiKey        string
	token         string
	http          *http.Client
	uploadTimeout time.Duration
	limiter       *rate.Limiter
	tracer        trace.Tracer
}

// NewTrelloFactory returns a Factory whose clients share one HTTP client and rate limiter.
func NewTrelloFactory(opts Options) Factory {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 120 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 8
	}
	if opts.Burst <= 0 {
		opts.Burst = 4
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
	tracer := otel.Tracer("order-card-bot/board")

	return func(apiKey, token string) Client {
		return &TrelloClient{
			baseURL:       opts.BaseURL,
			apiKey:        apiKey,
			token:         token,
			http:          httpClient,
			uploadTimeout: opts.UploadTimeout,
			limiter:       limiter,
			tracer:        tracer,
		}
	}
}

func (c *TrelloClient) CreateCard(ctx context.Context, req CardRequest) (*Card, error) {
	var card Card
	if err := c.do(ctx, "create_card", http.MethodPost, "/cards", nil, req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *TrelloClient) CreateChecklist(ctx context.Context, cardID, name string) (*Checklist, error) {
	var checklist Checklist
	params := url.Values{"name": {name}}
	if err := c.do(ctx, "create_checklist", http.MethodPost, "/cards/"+cardID+"/checklists", params, nil, &checklist); err != nil {
		return nil, err
	}
	return &checklist, nil
}

func (c *TrelloClient) AddCheckItem(ctx context.Context, checklistID, name string) error {
	params := url.Values{"name": {name}}
	return c.do(ctx, "add_check_item", http.MethodPost, "/checklists/"+checklistID+"/checkItems", params, nil, nil)
}

func (c *TrelloClient) AddComment(ctx context.Context, cardID, text string) error {
	params := url.Values{"text": {text}}
	return c.do(ctx, "add_comment", http.MethodPost, "/cards/"+cardID+"/actions/comments", params, nil, nil)
}

func (c *TrelloClient) AddMember(ctx context.Context, cardID, memberID string) error {
	params := url.Values{"value": {memberID}}
	return c.do(ctx, "add_member", http.MethodPost, "/cards/"+cardID+"/idMembers", params, nil, nil)
}

func (c *TrelloClient) AddLabel(ctx context.Context, cardID, labelID string) error {
	params := url.Values{"value": {labelID}}
	return c.do(ctx, "add_label", http.MethodPost, "/cards/"+cardID+"/idLabels", params, nil, nil)
}

func (c *TrelloClient) Lists(ctx context.Context, boardID string) ([]List, error) {
	var lists []List
	err := c.do(ctx, "get_lists", http.MethodGet, "/boards/"+boardID+"/lists", nil, nil, &lists)
	return lists, err
}

func (c *TrelloClient) Members(ctx context.Context, boardID string) ([]Member, error) {
	var members []Member
	err := c.do(ctx, "get_members", http.MethodGet, "/boards/"+boardID+"/members", nil, nil, &members)
	return members, err
}

func (c *TrelloClient) Labels(ctx context.Context, boardID string) ([]Label, error) {
	var labels []Label
	err := c.do(ctx, "get_labels", http.MethodGet, "/boards/"+boardID+"/labels", nil, nil, &labels)
	return labels, err
}

func (c *TrelloClient) Cards(ctx context.Context, boardID string) ([]Card, error) {
	var cards []Card
	err := c.do(ctx, "get_cards", http.MethodGet, "/boards/"+boardID+"/cards", nil, nil, &cards)
	return cards, err
}

func (c *TrelloClient) UploadAttachment(ctx context.Context, cardID, localPath string) error {
	const op = "upload_attachment"

	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("board.card_id", cardID)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	file, err := os.Open(localPath)
	if err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: err})
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: err})
	}
	if _, err := io.Copy(part, file); err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: err})
	}
	if err := writer.Close(); err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/cards/"+cardID+"/attachments", nil), &body)
	if err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: err})
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	// uploads get their own deadline instead of the shared client timeout
	uploader := &http.Client{Transport: c.http.Transport}
	return c.send(ctx, span, op, uploader, req, nil)
}

func (c *TrelloClient) do(ctx context.Context, op, method, path string, params url.Values, payload, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("board.path", path),
	))
	defer span.End()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return c.fail(span, &RemoteError{Op: op, Err: err})
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), body)
	if err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: err})
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.send(ctx, span, op, c.http, req, out)
}

func (c *TrelloClient) send(ctx context.Context, span trace.Span, op string, client *http.Client, req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", c.authorization())
	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: err})
	}

	resp, err := client.Do(req)
	if err != nil {
		return c.fail(span, &RemoteError{Op: op, Err: redactURL(err)})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(span, &RemoteError{Op: op, Status: resp.StatusCode, Err: err})
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return c.fail(span, &RemoteError{Op: op, Status: resp.StatusCode, Body: string(data)})
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.fail(span, &RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)})
	}
	return nil
}

func (c *TrelloClient) fail(span trace.Span, err *RemoteError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (c *TrelloClient) authorization() string {
	return fmt.Sprintf(`OAuth oauth_consumer_key="%s", oauth_token="%s"`, c.apiKey, c.token)
}

func (c *TrelloClient) endpoint(path string, params url.Values) string {
	if len(params) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + params.Encode()
}

// redactURL drops the request URL from transport errors; query values may carry card text.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: "[redacted]", Err: urlErr.Err}
	}
	return err
}
