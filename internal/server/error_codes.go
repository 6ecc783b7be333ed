package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidID       = 1004
	ErrCodeMissingName     = 1005
	ErrCodeMissingType     = 1006
	ErrCodeMissingData     = 1007
	ErrCodeParentNotFound  = 1008
	ErrCodeParentNotFolder = 1009
	ErrCodeMissingEmail    = 1010
	ErrCodeMissingPassword = 1011
	ErrCodeFolderContent   = 1012

	// Domain state (2xxx)
	ErrCodeFileNotFound  = 2001
	ErrCodeAccountExists = 2101
	ErrCodeConflict      = 2102

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 404:
		return ErrCodeFileNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
