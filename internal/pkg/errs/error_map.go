/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
acks, HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:      {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrInvalidJSONFormat:  {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody: {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:  {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnknownEvent:       {Code: ErrUnknownEvent, Message: "Unsupported event %q."},

	// 2xxx: Room and Content Business Logic Errors
	ErrOutOfRegion:           {Code: ErrOutOfRegion, Message: "Sorry, this app is only available in Sweden."},
	ErrMissingFields:         {Code: ErrMissingFields, Message: "Username and room are required!"},
	ErrDuplicateUsername:     {Code: ErrDuplicateUsername, Message: "Username is in use!"},
	ErrProfanityRejected:     {Code: ErrProfanityRejected, Message: "Profanity is not allowed!"},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},

	// 3xxx: Session Errors
	ErrNotJoined:     {Code: ErrNotJoined, Message: "Join a room first."},
	ErrAlreadyJoined: {Code: ErrAlreadyJoined, Message: "You have already joined a room."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
