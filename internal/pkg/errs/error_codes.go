/*
Package errs provides custom error types and application-level error code constants.

These error codes identify every user-facing rejection the chat relay can produce,
both internally within the server and in the acks sent back to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that the request body or event payload is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the payload contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrUnknownEvent indicates that the client sent an event name the server does not handle.
	ErrUnknownEvent = 1008
)

// 2xxx: Room and Content Business Logic Errors
const (
	// ErrOutOfRegion indicates that the join location lies outside the supported region.
	ErrOutOfRegion = 2101

	// ErrMissingFields indicates that the username or room was empty after trimming.
	ErrMissingFields = 2102

	// ErrDuplicateUsername indicates that the username is already taken in the room.
	ErrDuplicateUsername = 2103

	// ErrProfanityRejected indicates that the message was blocked by the profanity policy.
	ErrProfanityRejected = 2201

	// ErrMessageContentTooLong indicates that the user's message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202
)

// 3xxx: Session Errors
const (
	// ErrNotJoined indicates that the connection attempted an action before joining a room.
	ErrNotJoined = 3001

	// ErrAlreadyJoined indicates that the connection already belongs to a room.
	ErrAlreadyJoined = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
