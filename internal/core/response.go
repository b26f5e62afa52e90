package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

var (
	jsonNull = []byte("null")
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// DecodeResponse parses a data endpoint body.
// A leading UTF-8 byte order mark is ignored.
// A literal null body returns (nil, nil) so the caller can ignore it.
// A body without a data array returns ErrMissingData.
func DecodeResponse(r io.Reader) (*Response, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	body = bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	if bytes.Equal(body, jsonNull) {
		return nil, nil
	}

	var raw struct {
		Data  *[]Record `json:"data"`
		Count int       `json:"count"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if raw.Data == nil {
		return nil, ErrMissingData
	}

	return &Response{Data: *raw.Data, Count: raw.Count}, nil
}
