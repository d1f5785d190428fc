package koji

import (
	"fmt"
)

const (
	fetchErrorStatusTemplateConstant = "koji request to %s failed with HTTP status %d"
	fetchErrorCauseTemplateConstant  = "koji request to %s failed: %v"
	parseErrorTemplateConstant       = "unable to parse %q: %s"
)

// FetchError reports a failed listing request: either a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

// Error describes the failed request.
func (fetchError FetchError) Error() string {
	if fetchError.Cause != nil {
		return fmt.Sprintf(fetchErrorCauseTemplateConstant, fetchError.URL, fetchError.Cause)
	}
	return fmt.Sprintf(fetchErrorStatusTemplateConstant, fetchError.URL, fetchError.StatusCode)
}

// Unwrap exposes the transport failure, if any.
func (fetchError FetchError) Unwrap() error {
	return fetchError.Cause
}

// ParseError reports listing content or identifiers that do not have the expected shape.
type ParseError struct {
	Input   string
	Message string
}

// Error describes the malformed input.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Input, parseError.Message)
}
