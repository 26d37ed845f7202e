package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode names a failure class. Codes travel over the daemon API, so
// clients can branch on them after a round trip.
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Daemon errors
	ErrCodeDaemonNotRunning     ErrorCode = "DAEMON_NOT_RUNNING"
	ErrCodeDaemonAlreadyRunning ErrorCode = "DAEMON_ALREADY_RUNNING"
	ErrCodeStoreNotReady        ErrorCode = "STORE_NOT_READY"
	ErrCodeStoreShuttingDown    ErrorCode = "STORE_SHUTTING_DOWN"

	// Persistence errors
	ErrCodePersistLoad    ErrorCode = "PERSIST_LOAD"
	ErrCodePersistSave    ErrorCode = "PERSIST_SAVE"
	ErrCodePersistBackend ErrorCode = "PERSIST_BACKEND"

	// Target and collaborator errors
	ErrCodeUnknownTarget   ErrorCode = "UNKNOWN_TARGET"
	ErrCodeNoURL           ErrorCode = "NO_URL"
	ErrCodeLaunchFailed    ErrorCode = "LAUNCH_FAILED"
	ErrCodeScanFailed      ErrorCode = "SCAN_FAILED"
	ErrCodeClipboardFailed ErrorCode = "CLIPBOARD_FAILED"

	// Command execution errors
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// General errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// LinkError is the error type of every linkpicker package. The daemon
// encodes it as the JSON body of a failed request.
type LinkError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *LinkError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
}

func (e *LinkError) Unwrap() error { return e.Cause }

// WithDetail records key=value on e and returns it for chaining.
func (e *LinkError) WithDetail(key string, value interface{}) *LinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, 1)
	}
	e.Details[key] = value
	return e
}

// ToJSON renders e the way `--verbose` prints it.
func (e *LinkError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

func New(code ErrorCode, message string) *LinkError {
	return &LinkError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *LinkError {
	return &LinkError{Code: code, Message: message, Cause: err}
}

// As returns the outermost LinkError in err's chain.
func As(err error) (*LinkError, bool) {
	for err != nil {
		if le, ok := err.(*LinkError); ok {
			return le, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}

// GetCode returns the code of the outermost LinkError, or "".
func GetCode(err error) ErrorCode {
	if le, ok := As(err); ok {
		return le.Code
	}
	return ""
}

// Is reports whether the outermost LinkError in err's chain has code.
func Is(err error, code ErrorCode) bool {
	return code != "" && GetCode(err) == code
}

// HTTPStatus maps err to the status the daemon answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeNoURL, ErrCodeUnknownTarget, ErrCodeConfigValidation:
		return http.StatusBadRequest
	case ErrCodeConfigNotFound:
		return http.StatusNotFound
	case ErrCodePermissionDenied:
		return http.StatusForbidden
	case ErrCodeStoreNotReady, ErrCodeStoreShuttingDown:
		return http.StatusServiceUnavailable
	case ErrCodeCommandTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
