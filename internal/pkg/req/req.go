/*
Package req provides helper functions for decoding client payloads.

WebSocket event payloads go through strict JSON decoding, so malformed or padded
input is rejected with a CustomError before any business logic sees it.
*/
package req

import (
	"bytes"
	"encoding/json"

	"geochat/internal/pkg/errs"
)

// DecodePayload decodes a raw event payload into dst.
// An empty or null payload is rejected because every event that carries one requires it.
func DecodePayload(raw json.RawMessage, dst any) *errs.CustomError {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errs.NewError(errs.ErrInvalidParams)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
