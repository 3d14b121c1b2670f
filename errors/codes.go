package errors

// ErrorCode is a stable machine-readable identifier for an error condition.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_HTTP_OK

	// General
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_FORBIDDEN

	// Authentication
	ErrorCode_UNAUTHENTICATED
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED

	// Platform / external collaborators
	ErrorCode_EXTERNAL_API_FAILED
	ErrorCode_TRANSCRIPT_NOT_FOUND
	ErrorCode_GENERATION_FAILED

	// Malformed input
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_INVALID_JOIN_URL
	ErrorCode_EMPTY_UPLOAD
	ErrorCode_UPLOAD_TOO_LARGE
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:              "UNKNOWN",
	ErrorCode_HTTP_OK:              "OK",
	ErrorCode_INTERNAL:             "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:     "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:            "NOT_FOUND",
	ErrorCode_FORBIDDEN:            "FORBIDDEN",
	ErrorCode_UNAUTHENTICATED:      "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_TOKEN:   "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:   "AUTH_TOKEN_EXPIRED",
	ErrorCode_EXTERNAL_API_FAILED:  "EXTERNAL_API_FAILED",
	ErrorCode_TRANSCRIPT_NOT_FOUND: "TRANSCRIPT_NOT_FOUND",
	ErrorCode_GENERATION_FAILED:    "GENERATION_FAILED",
	ErrorCode_INVALID_PAYLOAD:      "INVALID_PAYLOAD",
	ErrorCode_INVALID_JOIN_URL:     "INVALID_JOIN_URL",
	ErrorCode_EMPTY_UPLOAD:         "EMPTY_UPLOAD",
	ErrorCode_UPLOAD_TOO_LARGE:     "UPLOAD_TOO_LARGE",
}

// String returns the stable name of the error code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
