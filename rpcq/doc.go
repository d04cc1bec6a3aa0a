// Package rpcq implements the client side of the RPCQ protocol used by the
// quilc compiler and QPU endpoints.
//
// Requests and replies are MessagePack maps tagged with a "_type" field and
// travel over a ZeroMQ DEALER socket. Connections to QPU endpoints are
// CURVE-encrypted with the keys handed out by an engagement.
//
//	c, err := rpcq.Dial("tcp://127.0.0.1:5555", nil)
//	var out struct{ Quil string `msgpack:"quil"` }
//	err = c.Call(ctx, "quil_to_native_quil", params, &out)
//
// Consumers depend on the Caller interface so that tests can substitute a
// fake.
package rpcq
