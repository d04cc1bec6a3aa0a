package quilc

import (
	"context"
	stderrors "errors"

	"github.com/wippyai/qcs-runtime/api"
	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/rpcq"
)

type targetDevice struct {
	ISA   *CompilerISA      `msgpack:"isa"`
	Specs map[string]string `msgpack:"specs"`
	Type  string            `msgpack:"_type"`
}

type nativeQuilRequest struct {
	Type         string       `msgpack:"_type"`
	Quil         string       `msgpack:"quil"`
	TargetDevice targetDevice `msgpack:"target_device"`
}

type compileParams struct {
	Protoquil *bool               `msgpack:"protoquil"`
	Args      []nativeQuilRequest `msgpack:"*args"`
}

type nativeQuilResponse struct {
	Quil string `msgpack:"quil"`
}

// Client compiles programs to native Quil with a quilc server.
type Client struct {
	caller   rpcq.Caller
	endpoint string
}

// NewClient wraps an RPCQ caller connected to endpoint.
func NewClient(caller rpcq.Caller, endpoint string) *Client {
	return &Client{caller: caller, endpoint: endpoint}
}

// Dial connects to the quilc server at endpoint.
func Dial(endpoint string, dial rpcq.Dialer) (*Client, error) {
	if dial == nil {
		dial = rpcq.DialCaller
	}
	c, err := dial(endpoint, nil)
	if err != nil {
		return nil, errors.Unreachable(errors.PhaseCompile, endpoint, err)
	}
	return NewClient(c, endpoint), nil
}

// Params builds the quil_to_native_quil parameters for a program and target.
func Params(quil string, isa *api.InstructionSetArchitecture) (any, error) {
	target, err := FromISA(isa)
	if err != nil {
		return nil, errors.Compile(errors.KindArchitecture,
			"convert instruction set architecture for quilc", err)
	}
	return compileParams{
		Args: []nativeQuilRequest{{
			Type: "NativeQuilRequest",
			Quil: quil,
			TargetDevice: targetDevice{
				Type:  "TargetDevice",
				ISA:   target,
				Specs: map[string]string{},
			},
		}},
	}, nil
}

// Compile returns the native Quil for quil on the processor described by isa.
func (c *Client) Compile(ctx context.Context, quil string, isa *api.InstructionSetArchitecture) (string, error) {
	params, err := Params(quil, isa)
	if err != nil {
		return "", err
	}
	var resp nativeQuilResponse
	if err := c.caller.Call(ctx, "quil_to_native_quil", params, &resp); err != nil {
		var se *rpcq.ServerError
		if stderrors.As(err, &se) {
			return "", errors.Compile(errors.KindInvalidInput, "quilc rejected the program", err)
		}
		return "", errors.Unreachable(errors.PhaseCompile, c.endpoint, err)
	}
	return resp.Quil, nil
}

// Version returns the version reported by the quilc server.
func (c *Client) Version(ctx context.Context) (string, error) {
	var info map[string]any
	if err := c.caller.Call(ctx, "get_version_info", map[string]any{}, &info); err != nil {
		return "", errors.Unreachable(errors.PhaseCompile, c.endpoint, err)
	}
	v, _ := info["quilc"].(string)
	return v, nil
}
