/*
Package chat is the WebSocket transport of the relay.

This file defines the JSON frames exchanged with clients. Every inbound frame names an
event and may carry a payload and an ack number; when the ack number is present the
server answers with an "ack" frame carrying the same number and, on failure, the error.
*/
package chat

import (
	"encoding/json"

	"geochat/internal/pkg/errs"
)

// Inbound event names.
const (
	EventJoin         = "join"
	EventSendMessage  = "sendMessage"
	EventSendLocation = "sendLocation"
	EventLeave        = "leave"
)

// EventAck answers an inbound frame that carried an ack number.
const EventAck = "ack"

// Inbound is a frame received from a client.
type Inbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Ack     *uint64         `json:"ack,omitempty"`
}

// Outbound is a frame sent to a client.
type Outbound struct {
	Event   string            `json:"event"`
	Payload any               `json:"payload,omitempty"`
	Ack     *uint64           `json:"ack,omitempty"`
	Error   *errs.CustomError `json:"error,omitempty"`
}

// encodeEvent marshals an event frame.
func encodeEvent(event string, payload any) ([]byte, error) {
	return json.Marshal(Outbound{Event: event, Payload: payload})
}

// encodeAck marshals the ack for request number ack; err is nil on success.
func encodeAck(ack uint64, err *errs.CustomError) ([]byte, error) {
	return json.Marshal(Outbound{Event: EventAck, Ack: &ack, Error: err})
}
