// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Store errors
	ErrStoreNotFound = "STORE_NOT_FOUND"
	ErrConfigInvalid = "CONFIG_INVALID"

	// Reference errors
	ErrRefNotFound = "REF_NOT_FOUND"
	ErrRefExists   = "REF_EXISTS"
	ErrRefInvalid  = "REF_INVALID"

	// Record errors
	ErrRecordMalformed = "RECORD_MALFORMED"

	// Export errors
	ErrExportNotFound = "EXPORT_NOT_FOUND"
	ErrPatternInvalid = "PATTERN_INVALID"

	// Attachment errors
	ErrAttachmentFailed = "ATTACHMENT_FAILED"
	ErrWatchDirEmpty    = "WATCH_DIR_EMPTY"

	// Metadata fetch errors
	ErrFetchFailed = "FETCH_FAILED"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnCrossDevice       = "CROSS_DEVICE_FALLBACK"
	WarnAttachmentFailed  = "ATTACHMENT_FAILED"
	WarnRecordMalformed   = "RECORD_MALFORMED"
	WarnExportFailed      = "EXPORT_FAILED"
	WarnIndexUpdateFailed = "INDEX_UPDATE_FAILED"
)
