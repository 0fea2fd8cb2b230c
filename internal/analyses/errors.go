package analyses

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrNotFound          = errors.New("analysis not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrOracleUnavailable = errors.New("analysis oracle unavailable")
	ErrOracleError       = errors.New("analysis oracle error")
	ErrStoreWriteFailed  = errors.New("analysis store write failed")
)

const (
	ErrorCodeInvalidInput      = "INVALID_INPUT"
	ErrorCodeDocumentNotFound  = "DOCUMENT_NOT_FOUND"
	ErrorCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrorCodeOracleUnavailable = "ORACLE_UNAVAILABLE"
	ErrorCodeOracleError       = "ORACLE_ERROR"
	ErrorCodeStoreWriteFailed  = "STORE_WRITE_FAILED"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)

// ErrorCode maps a pipeline error to its stable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return ErrorCodeInvalidInput
	case errors.Is(err, ErrDocumentNotFound):
		return ErrorCodeDocumentNotFound
	case errors.Is(err, ErrExtractionFailed):
		return ErrorCodeExtractionFailed
	case errors.Is(err, ErrOracleUnavailable):
		return ErrorCodeOracleUnavailable
	case errors.Is(err, ErrOracleError):
		return ErrorCodeOracleError
	case errors.Is(err, ErrStoreWriteFailed):
		return ErrorCodeStoreWriteFailed
	default:
		return ErrorCodeInternal
	}
}

// SanitizeError flattens an error message to a single bounded line.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}
