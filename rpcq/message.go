package rpcq

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultClientTimeout is the server-side time budget, in seconds, sent with
// every request.
const DefaultClientTimeout = 10

// Request is the RPCQ request envelope.
type Request struct {
	Params        any     `msgpack:"params"`
	ClientKey     *string `msgpack:"client_key"`
	Type          string  `msgpack:"_type"`
	Method        string  `msgpack:"method"`
	ID            string  `msgpack:"id"`
	JSONRPC       string  `msgpack:"jsonrpc"`
	ClientTimeout int     `msgpack:"client_timeout"`
}

// NewRequest builds a request for method with a fresh random id.
func NewRequest(method string, params any) (*Request, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}
	return &Request{
		Type:          "RPCRequest",
		Method:        method,
		Params:        params,
		ID:            id.String(),
		JSONRPC:       "2.0",
		ClientTimeout: DefaultClientTimeout,
	}, nil
}

// Encode serializes the request as MessagePack with struct fields as map keys.
func (r *Request) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", r.Method, err)
	}
	return data, nil
}

// reply covers both RPCReply and RPCError; Type tells them apart.
type reply struct {
	Result msgpack.RawMessage `msgpack:"result"`
	Type   string             `msgpack:"_type"`
	ID     string             `msgpack:"id"`
	Error  string             `msgpack:"error"`
}

// ServerError is an RPCError reply.
type ServerError struct {
	Method  string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server replied with error: %s", e.Method, e.Message)
}

// DecodeReply decodes a reply to the request with the given id into result.
// An RPCError reply becomes a *ServerError.
func DecodeReply(data []byte, method, id string, result any) error {
	var rep reply
	if err := msgpack.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	switch rep.Type {
	case "RPCError":
		return &ServerError{Method: method, Message: rep.Error}
	case "RPCReply":
	default:
		return fmt.Errorf("decode %s reply: unexpected message type %q", method, rep.Type)
	}
	if rep.ID != id {
		return fmt.Errorf("%s: reply id %q does not match request id %q", method, rep.ID, id)
	}
	if result == nil {
		return nil
	}
	if err := msgpack.Unmarshal(rep.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
