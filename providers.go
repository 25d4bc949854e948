package finboard

import "fmt"

// ErrorCheck is a function type that inspects a parsed 2xx response body and
// reports whether the provider smuggled an error into it.
//
// Several finance APIs return HTTP 200 for rate limits, bad symbols, and
// invalid keys, carrying the actual failure as a body field. An ErrorCheck
// runs after JSON parsing and before path resolution; a non-nil return fails
// the cycle, so the widget keeps its last good value and shows the message.
//
// ErrorCheck follows functional programming principles: it is a pure
// function where the same input always produces the same output. This makes
// checks easy to test, compose, and reason about.
//
// Built-in checks: [FieldErrorCheck], [AlphaVantageErrorCheck], and
// [FirstErrorCheck] for composition.
//
// # Panic Safety
//
// ErrorCheck functions are called within a panic recovery boundary. If a
// check panics, the cycle fails with an error containing a correlation ID,
// and the full stack trace is logged server-side. A misbehaving check cannot
// crash the board.
type ErrorCheck func(body any) error

// FieldErrorCheck returns an [ErrorCheck] that fails when the response body
// is a JSON object containing any of the given top-level keys with a
// non-empty string value. The keys are tried in the order given; the first
// hit produces the error.
//
// Bodies that are not JSON objects pass the check unchanged; path resolution
// handles those on its own terms.
//
// Example:
//
//	// For responses like {"error": "symbol not found"}
//	check := finboard.FieldErrorCheck("error", "message")
func FieldErrorCheck(keys ...string) ErrorCheck {
	return func(body any) error {
		obj, ok := body.(map[string]any)
		if !ok {
			return nil
		}
		for _, key := range keys {
			if msg, ok := obj[key].(string); ok && msg != "" {
				return fmt.Errorf("provider error (%s): %s", key, msg)
			}
		}
		return nil
	}
}

// AlphaVantageErrorCheck is an [ErrorCheck] for Alpha Vantage responses.
//
// Alpha Vantage reports failures inside 200 OK bodies under three keys:
// "Error Message" (bad symbol or function), "Note" (free-tier rate limit
// exceeded), and "Information" (invalid or missing API key).
var AlphaVantageErrorCheck = FieldErrorCheck("Error Message", "Note", "Information")

// FirstErrorCheck returns an [ErrorCheck] that runs multiple checks in
// order, returning the first non-nil error.
//
// This is useful when a widget's provider sits behind a gateway that adds
// its own error envelope on top of the provider's.
//
// If all checks pass, FirstErrorCheck passes.
//
// Example:
//
//	check := finboard.FirstErrorCheck(
//	    finboard.AlphaVantageErrorCheck,
//	    finboard.FieldErrorCheck("error"),
//	)
func FirstErrorCheck(checks ...ErrorCheck) ErrorCheck {
	return func(body any) error {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(body); err != nil {
				return err
			}
		}
		return nil
	}
}
