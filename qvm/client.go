package qvm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/result"
)

type request struct {
	Addresses map[string]bool `json:"addresses,omitempty"`
	Type      string          `json:"type"`
	Quil      string          `json:"quil-instructions,omitempty"`
	Trials    int             `json:"trials,omitempty"`
}

type failure struct {
	Status string `json:"status"`
}

// Client submits programs to a QVM server over HTTP.
type Client struct {
	http *http.Client
	url  string
}

// NewClient returns a client for the QVM at url. A nil hc uses
// http.DefaultClient.
func NewClient(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, http: hc}
}

// URL returns the server address.
func (c *Client) URL() string {
	return c.url
}

// Run executes prog for shots trials and returns the values of each readout
// region, one row per shot.
func (c *Client) Run(ctx context.Context, prog *ast.Program, shots int, readouts []string) (map[string]result.Raw, error) {
	if shots < 1 {
		return nil, errors.Compile(errors.KindInvalidInput, "shots must be positive", nil)
	}
	req := request{
		Type:      "multishot",
		Addresses: make(map[string]bool, len(readouts)),
		Trials:    shots,
		Quil:      prog.String(),
	}
	for _, name := range readouts {
		req.Addresses[name] = true
	}

	Logger().Debug("submitting to qvm",
		zap.String("url", c.url),
		zap.Int("shots", shots),
		zap.Strings("readouts", readouts))

	status, body, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, errors.Device(fmt.Sprintf("qvm responded with status %d: %s", status, failureMessage(body)), nil)
	}

	var f failure
	if json.Unmarshal(body, &f) == nil && f.Status != "" {
		return nil, errors.Device("qvm reported: "+f.Status, nil)
	}
	var regs map[string]result.Raw
	if err := json.Unmarshal(body, &regs); err != nil {
		return nil, errors.Protocol(errors.PhaseDecode, "decode qvm response", err)
	}
	return regs, nil
}

// Version asks the server for its version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	status, body, err := c.post(ctx, request{Type: "version"})
	if err != nil {
		return "", err
	}
	if status/100 != 2 {
		return "", errors.Device(fmt.Sprintf("qvm responded with status %d: %s", status, failureMessage(body)), nil)
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) post(ctx context.Context, req request) (int, []byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return 0, nil, errors.Protocol(errors.PhaseSubmit, "encode qvm request", err)
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, errors.Unreachable(errors.PhaseSubmit, c.url, err)
	}
	hr.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(hr)
	if err != nil {
		return 0, nil, errors.Unreachable(errors.PhaseSubmit, c.url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Unreachable(errors.PhaseSubmit, c.url, err)
	}
	return resp.StatusCode, body, nil
}

func failureMessage(body []byte) string {
	var f failure
	if json.Unmarshal(body, &f) == nil && f.Status != "" {
		return f.Status
	}
	return truncate(strings.TrimSpace(string(body)), 200)
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
