package builder

import "github.com/factory-layout/interpreter/mapping"

// Mode is one error-handling mode, applied uniformly per category.
type Mode string

const (
	ErrorAndStop    Mode = "error_and_stop"
	WarnAndContinue Mode = "warn_and_continue"
	Ignore          Mode = "ignore"
)

// ErrorPolicy selects a mode per backend error category.
type ErrorPolicy struct {
	Creation   Mode
	Property   Mode
	Connection Mode
}

// DefaultPolicy warns and continues everywhere.
func DefaultPolicy() ErrorPolicy {
	return ErrorPolicy{
		Creation:   WarnAndContinue,
		Property:   WarnAndContinue,
		Connection: WarnAndContinue,
	}
}

// PolicyFromRules reads the rule table's error_handling section. Unset
// entries default to warn_and_continue.
func PolicyFromRules(eh mapping.ErrorHandling) ErrorPolicy {
	return ErrorPolicy{
		Creation:   parseMode(eh.OnCreationError),
		Property:   parseMode(eh.OnPropertyError),
		Connection: parseMode(eh.OnConnectionError),
	}
}

func parseMode(s string) Mode {
	switch Mode(s) {
	case ErrorAndStop, WarnAndContinue, Ignore:
		return Mode(s)
	default:
		return WarnAndContinue
	}
}
