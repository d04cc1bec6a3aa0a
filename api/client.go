package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/qcs-runtime/configuration"
	"github.com/wippyai/qcs-runtime/errors"
)

// Client talks to the QCS REST API on behalf of a Configuration.
type Client struct {
	cfg *configuration.Configuration
	log *zap.Logger
}

// NewClient returns a client using cfg's API URL, HTTP client and tokens.
func NewClient(cfg *configuration.Configuration) *Client {
	return &Client{cfg: cfg, log: zap.NewNop()}
}

// WithLogger returns a copy of c that logs requests to l.
func (c *Client) WithLogger(l *zap.Logger) *Client {
	cp := *c
	cp.log = l
	return &cp
}

// StatusError is a non-2xx response from QCS.
type StatusError struct {
	Method     string
	URL        string
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

// StatusCode returns the HTTP status of the first StatusError in err's
// chain, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if stderrors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// InstructionSetArchitecture fetches the ISA of a processor.
func (c *Client) InstructionSetArchitecture(ctx context.Context, processorID string) (*InstructionSetArchitecture, error) {
	var isa InstructionSetArchitecture
	path := "/v1/quantumProcessors/" + url.PathEscape(processorID) + "/instructionSetArchitecture"
	if err := c.do(ctx, errors.PhaseCompile, http.MethodGet, path, nil, &isa); err != nil {
		return nil, err
	}
	return &isa, nil
}

// Translate converts native Quil into an encrypted executable for shots runs.
func (c *Client) Translate(ctx context.Context, processorID, quil string, shots int) (*Translation, error) {
	var tr Translation
	path := "/v1/quantumProcessors/" + url.PathEscape(processorID) + ":translateNativeQuilToEncryptedBinary"
	req := TranslationRequest{Quil: quil, NumShots: shots}
	if err := c.do(ctx, errors.PhaseCompile, http.MethodPost, path, req, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Engage requests access to a processor. A 403 or 404 means the caller holds
// no reservation for it.
func (c *Client) Engage(ctx context.Context, processorID string) (*Engagement, error) {
	var eng Engagement
	req := EngagementRequest{QuantumProcessorID: processorID}
	err := c.do(ctx, errors.PhaseEngage, http.MethodPost, "/v1/engagements", req, &eng)
	if err != nil {
		switch StatusCode(err) {
		case http.StatusForbidden, http.StatusNotFound:
			return nil, errors.NoReservation(processorID, err)
		}
		return nil, err
	}
	return &eng, nil
}

// ListQuantumProcessors follows pagination and returns every processor the
// caller can see.
func (c *Client) ListQuantumProcessors(ctx context.Context) ([]QuantumProcessor, error) {
	var all []QuantumProcessor
	token := ""
	for {
		q := url.Values{"pageSize": {"100"}}
		if token != "" {
			q.Set("pageToken", token)
		}
		var page listQuantumProcessorsResponse
		if err := c.do(ctx, errors.PhaseSubmit, http.MethodGet, "/v1/quantumProcessors?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.QuantumProcessors...)
		if page.NextPageToken == "" || page.NextPageToken == token {
			return all, nil
		}
		token = page.NextPageToken
	}
}

// do performs one request. A 401 triggers a single token refresh and retry
// when a refresh token is available.
func (c *Client) do(ctx context.Context, phase errors.Phase, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return errors.Wrap(errors.ClassTransport, phase, errors.KindProtocol, err, "encode request")
		}
	}

	endpoint := strings.TrimRight(c.cfg.APIURL, "/") + path
	refreshed := false
	for {
		status, data, err := c.send(ctx, method, endpoint, body)
		if err != nil {
			return errors.Unreachable(phase, endpoint, err)
		}
		c.log.Debug("qcs request",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", status))

		if status == http.StatusUnauthorized {
			if !refreshed && c.cfg.HasRefreshToken() {
				refreshed = true
				if err := c.cfg.Refresh(ctx); err != nil {
					return err
				}
				continue
			}
			detail := "QCS rejected the configured credentials"
			if c.cfg.AccessToken() == "" && !c.cfg.HasRefreshToken() {
				detail = "no QCS credentials are configured"
			}
			return errors.Configuration(errors.KindCredentials, detail, &StatusError{
				Method:     method,
				URL:        endpoint,
				StatusCode: status,
				Message:    errorMessage(data),
			})
		}
		if status/100 != 2 {
			return classify(phase, &StatusError{
				Method:     method,
				URL:        endpoint,
				StatusCode: status,
				Message:    errorMessage(data),
			})
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Protocol(phase, "decode response from "+endpoint, err)
		}
		return nil
	}
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.cfg.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	client := c.cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

func classify(phase errors.Phase, se *StatusError) error {
	switch se.StatusCode {
	case http.StatusForbidden, http.StatusNotFound:
		return errors.Unauthorized(phase, "access denied", se)
	}
	return errors.Wrap(errors.ClassTransport, phase, errors.KindProtocol, se, "unexpected response from QCS")
}

// errorMessage extracts the "message" field of a QCS error body, falling
// back to the trimmed body text.
func errorMessage(data []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		return e.Message
	}
	return truncate(strings.TrimSpace(string(data)), 200)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
