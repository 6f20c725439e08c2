package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrUnknownPanel     ErrCode = "UNKNOWN_PANEL"
	ErrUnsupportedChart ErrCode = "UNSUPPORTED_CHART_FORMAT"

	// ─── Data ──────────────────────────────────────────────────────────
	ErrNoData   ErrCode = "NO_DATA"
	ErrDataLoad ErrCode = "DATA_LOAD_ERROR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrUnknownPanel:
		return "Unknown panel. Use exam, class or overall."
	case ErrUnsupportedChart:
		return "Unsupported chart format. Use png or svg."

	// ─── Data ──────────────────────────────────────────────────────────
	case ErrNoData:
		return "No data available for the selected options."
	case ErrDataLoad:
		return "The student performance data could not be loaded."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
