package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 8 * time.Second
	subjectPrefix  = "New ReachRight inquiry"
	sourceTag      = "reachright-marketing/contact"

	// GenericFailure is shown when the form service rejects a post without
	// saying why.
	GenericFailure = "Something went wrong. Please try again."
	// NetworkFailure is shown when the form service cannot be reached.
	NetworkFailure = "Network error. Please try again."
)

var tracer = otel.Tracer("reachright.co.za/web/internal/contact")

// Client posts contact submissions to a hosted form endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	now      func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID     string
	Status int
	Fake   bool
}

// RejectedError is returned when the form service answers with a non-2xx status.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("contact: submission rejected with status %d: %s", e.Status, e.Message)
}

// NewClient constructs a form client. When endpoint is empty, the client
// accepts submissions without any network traffic.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: defaultTimeout},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fake reports whether the client runs without a configured endpoint.
func (c *Client) Fake() bool {
	return c == nil || c.endpoint == ""
}

// Submit sends the submission once. Callers are expected to have validated it.
func (c *Client) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	sub = sub.Normalize()
	if c.Fake() {
		return c.fakeReceipt(), nil
	}

	ctx, span := tracer.Start(ctx, "contact.Submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("contact.package", sub.Package),
		attribute.Bool("contact.phone_present", sub.Phone != ""),
	)

	payload, err := json.Marshal(formPayload{
		Name:    sub.Name,
		Email:   sub.Email,
		Phone:   sub.Phone,
		Package: sub.Package,
		Message: sub.Message,
		Company: sub.Company,
		Subject: sub.Subject(),
		Source:  sourceTag,
	})
	if err != nil {
		return Receipt{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return Receipt{}, fmt.Errorf("contact: post submission: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rejected := &RejectedError{Status: resp.StatusCode, Message: rejectionMessage(resp.Body)}
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return Receipt{}, rejected
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	span.SetStatus(codes.Ok, http.StatusText(resp.StatusCode))

	return Receipt{ID: c.newID(), Status: resp.StatusCode}, nil
}

func (c *Client) newID() string {
	return ulid.MustNew(ulid.Timestamp(c.now()), ulid.DefaultEntropy()).String()
}

type formPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Package string `json:"package"`
	Message string `json:"message"`
	Company string `json:"company"`
	Subject string `json:"_subject"`
	Source  string `json:"_source"`
}

type errorPayload struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// rejectionMessage extracts errors[0].message from the response body.
func rejectionMessage(r io.Reader) string {
	body := drainError(r)
	if body == "" {
		return GenericFailure
	}
	var payload errorPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return GenericFailure
	}
	if len(payload.Errors) == 0 || strings.TrimSpace(payload.Errors[0].Message) == "" {
		return GenericFailure
	}
	return strings.TrimSpace(payload.Errors[0].Message)
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return strings.TrimSpace(string(b))
}
