package simulator

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a SimulationError.
type ErrorCode string

const (
	CodeDanglingActionID        ErrorCode = "DanglingActionId"
	CodeNavigationTargetMissing ErrorCode = "NavigationTargetMissing"
	CodeSessionClosed           ErrorCode = "SessionClosed"
	CodeNoAction                ErrorCode = "NoAction"
	CodeUnsupportedAction       ErrorCode = "UnsupportedAction"
	CodeEmptyDocument           ErrorCode = "EmptyDocument"
)

// SimulationError reports an event the session could not apply. The
// session state is unchanged when one is returned.
type SimulationError struct {
	Code     ErrorCode
	Message  string
	ScreenID string
}

func (e *SimulationError) Error() string {
	if e.ScreenID != "" {
		return fmt.Sprintf("simulator: %s on %s: %s", e.Code, e.ScreenID, e.Message)
	}
	return fmt.Sprintf("simulator: %s: %s", e.Code, e.Message)
}

// CodeOf extracts the code of a *SimulationError anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var simErr *SimulationError
	if errors.As(err, &simErr) {
		return simErr.Code, true
	}
	return "", false
}

func newError(code ErrorCode, screenID, format string, args ...any) *SimulationError {
	return &SimulationError{Code: code, Message: fmt.Sprintf(format, args...), ScreenID: screenID}
}
