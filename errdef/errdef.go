// Package errdef is the definition-time error taxonomy raised by grammar
// self-analysis (spec §7). It plays the role the teacher's top-level
// errors package plays for langdef: a single small Error type shared by
// every analysis package, each of which contributes its own constructors.
package errdef

import "fmt"

// Kind enumerates the eight definition-error classes named in spec §6.
type Kind int

const (
	InvalidRuleName Kind = iota + 1
	DuplicateRuleName
	InvalidRuleOverride
	DuplicateProductions
	UnresolvedSubruleRef
	LeftRecursion
	NoneLastEmptyAlt
	AmbiguousAlts
)

func (k Kind) String() string {
	switch k {
	case InvalidRuleName:
		return "INVALID_RULE_NAME"
	case DuplicateRuleName:
		return "DUPLICATE_RULE_NAME"
	case InvalidRuleOverride:
		return "INVALID_RULE_OVERRIDE"
	case DuplicateProductions:
		return "DUPLICATE_PRODUCTIONS"
	case UnresolvedSubruleRef:
		return "UNRESOLVED_SUBRULE_REF"
	case LeftRecursion:
		return "LEFT_RECURSION"
	case NoneLastEmptyAlt:
		return "NONE_LAST_EMPTY_ALT"
	case AmbiguousAlts:
		return "AMBIGUOUS_ALTS"
	default:
		return "UNKNOWN_DEFINITION_ERROR"
	}
}

// Error is one definition-time finding. RuleName is always populated;
// Occurrence and AltIndexes are populated only by the kinds that name them
// (DuplicateProductions/AmbiguousAlts and AmbiguousAlts respectively).
type Error struct {
	Kind       Kind
	RuleName   string
	Message    string
	Occurrence int
	AltIndexes []int
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error, formatting msg with params the way fmt.Sprintf does
// (mirrors the teacher's errors.Format).
func New(kind Kind, ruleName, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return &Error{Kind: kind, RuleName: ruleName, Message: msg}
}

// Aggregate joins multiple definition errors into one fatal error, the
// shape spec §4.6 step 5 requires ("raise a fatal parser-definition error
// aggregating all messages").
type Aggregate struct {
	Errors []*Error
}

func (a *Aggregate) Error() string {
	if len(a.Errors) == 1 {
		return a.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d grammar definition errors:", len(a.Errors))
	for _, e := range a.Errors {
		msg += "\n  " + e.Error()
	}
	return msg
}
