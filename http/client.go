package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/fwojciec/converse"
	"github.com/google/uuid"
)

// Interface compliance checks.
var (
	_ converse.Backend     = (*Client)(nil)
	_ converse.AudioSource = (*Client)(nil)
)

// Client talks to the conversational backend over HTTP.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	newID      func() string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCorrelationIDs sets the generator for the X-Correlation-ID header.
func WithCorrelationIDs(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

// New creates a [Client] for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("http: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("http: base url must be absolute http(s), got %q: %w", baseURL, converse.ErrValidation)
	}
	c := &Client{
		base:       base,
		httpClient: http.DefaultClient,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Converse uploads audio as a multipart form and decodes the backend's
// answer.
func (c *Client) Converse(ctx context.Context, audio converse.Audio) (converse.Result, error) {
	body, contentType, err := encodeUpload(audio)
	if err != nil {
		return converse.Result{}, fmt.Errorf("http: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(&url.URL{Path: conversePath}), body)
	if err != nil {
		return converse.Result{}, fmt.Errorf("http: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(correlationID, c.newID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return converse.Result{}, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return converse.Result{}, fmt.Errorf("http: %w", parseHTTPError(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return converse.Result{}, fmt.Errorf("http: read response: %w", err)
	}
	result, err := DecodeResult(data)
	if err != nil {
		return converse.Result{}, fmt.Errorf("http: %w", err)
	}
	return result, nil
}

// OpenAudio downloads a playback reference. Relative references resolve
// against the backend base URL.
func (c *Client) OpenAudio(ctx context.Context, ref string) (io.ReadCloser, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("http: parse reference %q: %w", ref, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(u), nil)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	req.Header.Set(correlationID, c.newID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("http: download %s: %w", ref, parseHTTPError(resp))
	}
	return resp.Body, nil
}

func (c *Client) resolve(ref *url.URL) string {
	return c.base.ResolveReference(ref).String()
}

func encodeUpload(audio converse.Audio) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, uploadName))
	mediaType := audio.MediaType
	if mediaType == "" {
		mediaType = converse.MediaTypeWAV
	}
	h.Set("Content-Type", mediaType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &converse.BackendError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %s", err)}
	}
	return &converse.BackendError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
}
