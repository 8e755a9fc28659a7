/*
Package user contains the data structure describing a joined chat participant.

A User ties one transport connection to one display name in one room. Users are
immutable values; changing name or room means leaving and joining again.
*/
package user

// User represents one participant who has joined a room.
type User struct {
	// ConnectionID is the transport-issued identifier of the participant's connection.
	ConnectionID string `json:"-"`

	// Username is the trimmed display name, unique within the room under normalization.
	Username string `json:"username"`

	// Room is the trimmed room name as typed by the participant.
	Room string `json:"room"`
}
