package homeassistant

import (
	"fmt"
	"net/http"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindTransport means no HTTP response arrived.
	KindTransport Kind = iota + 1
	// KindStatus means the server answered outside 2xx.
	KindStatus
	// KindDecode means the payload did not match the expected shape.
	KindDecode
)

// Error describes a failed API call.
type Error struct {
	Kind       Kind
	Path       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		text := http.StatusText(e.StatusCode)
		if text == "" {
			return fmt.Sprintf("HTTP error %d from %s", e.StatusCode, e.Path)
		}
		return fmt.Sprintf("HTTP error %d (%s) from %s", e.StatusCode, text, e.Path)
	case KindDecode:
		return fmt.Sprintf("decode response from %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("request %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
