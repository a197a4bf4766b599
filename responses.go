package rouvy

import (
	"net/url"

	"github.com/jamesprial/go-rouvy-api-wrapper/internal"
)

// Payload is a request body. It is held as bytes so a retried POST sends
// the same body again.
type Payload = internal.Payload

// Response is a fully read HTTP response. Attempts is how many network
// attempts it took.
type Response = internal.Response

// FormPayload encodes values as an application/x-www-form-urlencoded body.
func FormPayload(values url.Values) *Payload {
	return internal.FormPayload(values)
}

// IsAcceptableStatus reports whether the client treats code as success.
// Every other status is retried and finally reported as
// *errors.RequestExhaustedError.
func IsAcceptableStatus(code int) bool {
	return internal.IsAcceptableStatus(code)
}
