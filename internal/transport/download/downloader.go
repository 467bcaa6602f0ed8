// Package download fetches operator files into the local files directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"order-card-bot/internal/conversation"

	"github.com/google/uuid"
)

// DefaultMaxSize matches the largest file the Telegram bot API lets bots download.
const DefaultMaxSize = 20 << 20

var (
	ErrTooLarge      = errors.New("file exceeds the download limit")
	ErrForbiddenHost = errors.New("host is not allowed")
)

// Resolver turns a transport file id into a URL the downloader can GET.
type Resolver func(ctx context.Context, fileID string) (string, error)

// Downloader accepts either plain http(s) URLs or ids its Resolver understands.
// Plain URLs come from operators and may only reach public addresses.
type Downloader struct {
	client  *http.Client
	direct  *http.Client
	resolve Resolver
	maxSize int64
}

var _ conversation.Downloader = (*Downloader)(nil)

func New(timeout time.Duration, resolve Resolver, maxSize int64) *Downloader {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		direct:  publicOnlyClient(timeout),
		resolve: resolve,
		maxSize: maxSize,
	}
}

func (d *Downloader) Download(ctx context.Context, file conversation.FileRef, dir string) (string, error) {
	if file.Size > d.maxSize {
		return "", ErrTooLarge
	}

	target, client := file.ID, d.direct
	if !isURL(target) {
		if d.resolve == nil {
			return "", fmt.Errorf("no resolver for file id %q", file.ID)
		}
		resolved, err := d.resolve(ctx, file.ID)
		if err != nil {
			return "", fmt.Errorf("resolve file: %w", redactURL(err))
		}
		target, client = resolved, d.client
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.New("download file: invalid url")
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", redactURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	path := filepath.Join(dir, LocalName(file))
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(out, io.LimitReader(resp.Body, d.maxSize+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > d.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// LocalName keeps the original base name behind a short unique prefix.
func LocalName(file conversation.FileRef) string {
	base := filepath.Base(strings.ReplaceAll(file.Name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return uuid.NewString()[:8] + "_" + base
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// publicOnlyClient refuses to connect to loopback, private, link-local and
// unspecified addresses. The check runs on the dialed IP, so redirects and
// DNS answers pointing inward are refused too.
func publicOnlyClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !isPublic(ip) {
				return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
			}
			return nil
		},
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

func isPublic(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

// redactURL drops the request URL from transport errors. Resolved Telegram
// file URLs embed the bot token.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: "[redacted]", Err: urlErr.Err}
	}
	return err
}
