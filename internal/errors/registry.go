package errors

// Registered error codes.
const (
	CodeValidation         = "T100"
	CodeTransport          = "T200"
	CodeUnexpectedResponse = "T201"
	CodeConfig             = "T300"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string

	// Public is the default user-facing message. Empty means the error
	// carries no message the user should see.
	Public string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Validation Errors (T100-T199)
	// ============================================

	CodeValidation: {
		Category: CategoryValidation,
		Message:  "Form validation failed",
		Detail:   "One or more fields were rejected by the form schema. Field messages are shown inline.",
	},

	// ============================================
	// Transport Errors (T200-T299)
	// ============================================

	CodeTransport: {
		Category: CategoryTransport,
		Message:  "Auth backend request failed",
		Detail:   "The backend answered with a failure status or could not be reached.",
	},
	CodeUnexpectedResponse: {
		Category: CategoryTransport,
		Message:  "Unexpected server response",
		Detail:   "The backend answered with a status other than the one the endpoint promises on success.",
		Public:   "Unexpected server response",
	},

	// ============================================
	// Config Errors (T300-T399)
	// ============================================

	CodeConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "Check taskly.json, .env and TASKLY_* environment variables.",
	},
}
