/*
Package randx provides generators for the unique identifiers used by the chat relay.

Connection IDs key the presence registry and the transport's group table; message IDs
let clients de-duplicate events. Both are random UUIDs.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnectionIDPrefix marks identifiers issued to transport connections.
const ConnectionIDPrefix = "conn_"

// ConnectionID returns a fresh identifier for a transport connection.
func ConnectionID() string {
	return ConnectionIDPrefix + uuid.NewString()
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}
