package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec serializes messages with encoding/json. The messages in this
// package are plain structs, not protobuf types, so the protojson codec that
// Connect registers by default cannot handle them.
type jsonCodec struct {
	name string
}

// Codecs are the Connect codecs for the messages of this package. Handlers
// register both names so "application/json; charset=utf-8" is accepted too.
var Codecs = []connect.Codec{
	jsonCodec{name: "json"},
	jsonCodec{name: "json; charset=utf-8"},
}

func (c jsonCodec) Name() string { return c.name }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// HandlerOptions registers the JSON codecs on a handler.
func HandlerOptions() []connect.HandlerOption {
	opts := make([]connect.HandlerOption, 0, len(Codecs))
	for _, c := range Codecs {
		opts = append(opts, connect.WithCodec(c))
	}
	return opts
}

// ClientOption makes a client send JSON.
func ClientOption() connect.ClientOption {
	return connect.WithCodec(Codecs[0])
}
