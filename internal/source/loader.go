package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout caps remote fetches.
const DefaultTimeout = 30 * time.Second

// Loader reads raw documents from a Source.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	stdin   io.Reader
	timeout time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem serves KindFS sources from files.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient replaces the client used for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.http = client
		}
	}
}

// WithTimeout caps remote fetch durations. Zero disables the cap.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// WithStdin replaces os.Stdin.
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		if r != nil {
			l.stdin = r
		}
	}
}

// NewLoader builds a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		http:    http.DefaultClient,
		stdin:   os.Stdin,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load returns the bytes behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind {
	case KindFile:
		if src.Location == "" {
			return nil, errors.New("source: file path is required")
		}
		data, err = os.ReadFile(src.Location)
	case KindFS:
		if l.fs == nil {
			return nil, errors.New("source: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location)
	case KindStdin:
		data, err = io.ReadAll(l.stdin)
	case KindURL:
		data, err = l.fetch(ctx, src.Location)
	default:
		return nil, fmt.Errorf("source: unsupported kind %q", src.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("source: load %s: %w", src, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("source: %s is empty", src)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
