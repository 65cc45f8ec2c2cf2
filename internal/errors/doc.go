// Package errors provides structured, coded errors for taskly.
//
// Every error carries a registered code that maps to a category and a short
// message. Errors that reach the browser also carry a user-facing message,
// which is the only part of an error ever shown in a notification.
//
// # Categories
//
//   - validation: form input rejected by a schema
//   - transport: the auth backend answered with a failure or could not be reached
//   - config: invalid application configuration
//
// # Usage
//
//	err := errors.New(errors.CodeUnexpectedResponse).
//	    WithDetail("status 202 from api/auth/login/")
//
//	errors.UserMessage(err) // "Unexpected server response"
package errors
