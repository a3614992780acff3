// Package fetch implements the HTTP prefetcher and render target used by the CLI and MCP server.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	_ "golang.org/x/image/webp" // register WebP with image.Decode
)

// maxRedirects bounds how many Location hops a single GET follows.
const maxRedirects = 5

// ErrHTTPStatus is returned when a server answers with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *logrus.Logger
	Dial      fasthttp.DialFunc // nil uses the default dialer
}

// Client fetches resources over HTTP. It is both a prefetch adapter and a render target.
type Client struct {
	http      *fasthttp.Client
	timeout   time.Duration
	userAgent string
	log       *logrus.Logger
}

var (
	_ contract.PrefetchAdapter = &Client{} // Compile-time check
	_ contract.RenderTarget    = &Client{} // Compile-time check
)

// NewClient creates an HTTP client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = contract.DefaultHTTPTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = contract.DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = contract.Logger()
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                     opts.UserAgent,
			Dial:                     opts.Dial,
			NoDefaultUserAgentHeader: true,
		},
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		log:       opts.Logger,
	}
}

// Prefetch downloads uri and discards the body, warming connections and caches along the way.
func (c *Client) Prefetch(ctx context.Context, uri string) error {
	body, err := c.Get(ctx, uri, nil)
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{"key": uri, "bytes": len(body)}).Debug("Prefetched")
	return nil
}

// Load fetches and decodes req.URI on its own goroutine and reports the decoded size.
func (c *Client) Load(req schema.RenderRequest, done func(schema.RenderReport)) {
	go func() {
		body, err := c.Get(context.Background(), req.URI, req.Headers)
		if err != nil {
			done(schema.RenderReport{Err: err})
			return
		}
		img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
		if err != nil {
			done(schema.RenderReport{Err: fmt.Errorf("failed to decode %s: %w", req.URI, err)})
			return
		}
		bounds := img.Bounds()
		done(schema.RenderReport{Width: bounds.Dx(), Height: bounds.Dy()})
	}()
}

// Get performs a GET with headers, following redirects, and returns the body of a 2xx answer.
func (c *Client) Get(ctx context.Context, uri string, headers map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	for hop := 0; ; hop++ {
		if err := c.http.DoTimeout(req, resp, timeout); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", uri, err)
		}
		code := resp.StatusCode()
		if !fasthttp.StatusCodeIsRedirect(code) {
			break
		}
		location := resp.Header.Peek(fasthttp.HeaderLocation)
		if len(location) == 0 || hop >= maxRedirects {
			return nil, fmt.Errorf("%w: %d for %s (redirect not followed)", ErrHTTPStatus, code, uri)
		}
		req.URI().UpdateBytes(location)
		resp.Reset()
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, fmt.Errorf("%w: %d for %s", ErrHTTPStatus, code, uri)
	}
	return append([]byte(nil), resp.Body()...), nil
}
