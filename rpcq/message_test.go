package rpcq

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestNewRequest(t *testing.T) {
	a, err := NewRequest("get_buffers", map[string]any{"job_id": "j", "wait": true})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	b, _ := NewRequest("get_buffers", nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids not unique: %q %q", a.ID, b.ID)
	}

	data, err := a.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := map[string]any{
		"_type":   "RPCRequest",
		"method":  "get_buffers",
		"jsonrpc": "2.0",
		"id":      a.ID,
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %v", k, m[k], v)
		}
	}
	if _, ok := m["client_key"]; !ok {
		t.Error("client_key must be present")
	}
	params, ok := m["params"].(map[string]any)
	if !ok || params["job_id"] != "j" || params["wait"] != true {
		t.Errorf("params = %#v", m["params"])
	}
}

func encodeReply(t *testing.T, v map[string]any) []byte {
	t.Helper()
	data, err := msgpack.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDecodeReply(t *testing.T) {
	type out struct {
		Quil string `msgpack:"quil"`
	}

	tests := []struct {
		name      string
		reply     map[string]any
		wantQuil  string
		wantErr   string
		wantServe bool
	}{
		{
			name:     "reply",
			reply:    map[string]any{"_type": "RPCReply", "id": "abc", "result": map[string]any{"quil": "H 0\n"}},
			wantQuil: "H 0\n",
		},
		{
			name:      "error",
			reply:     map[string]any{"_type": "RPCError", "id": "abc", "error": "bad program"},
			wantErr:   "bad program",
			wantServe: true,
		},
		{
			name:    "mismatched id",
			reply:   map[string]any{"_type": "RPCReply", "id": "other", "result": map[string]any{}},
			wantErr: "does not match",
		},
		{
			name:    "unknown type",
			reply:   map[string]any{"_type": "RPCWarning", "id": "abc"},
			wantErr: "unexpected message type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got out
			err := DecodeReply(encodeReply(t, tt.reply), "quil_to_native_quil", "abc", &got)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				var se *ServerError
				if stderrors.As(err, &se) != tt.wantServe {
					t.Errorf("ServerError = %v, want %v", se != nil, tt.wantServe)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeReply: %v", err)
			}
			if got.Quil != tt.wantQuil {
				t.Errorf("Quil = %q, want %q", got.Quil, tt.wantQuil)
			}
		})
	}
}

func TestDecodeReplyGarbage(t *testing.T) {
	if err := DecodeReply([]byte{0xc1}, "m", "id", nil); err == nil {
		t.Fatal("expected error for invalid msgpack")
	}
}
