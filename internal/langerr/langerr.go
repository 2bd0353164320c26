// Package langerr defines the error kinds raised by the core: regex
// compilation, lexer construction and run, grammar construction, and
// parser table construction and run all fail synchronously by returning
// one of these.
package langerr

import "fmt"

// Kind discriminates the error kinds the core can raise. Two errors
// produced by this package with the same Kind compare equal via Is.
type Kind int

const (
	// KindNone is the zero Kind; never set on a real error.
	KindNone Kind = iota

	// KindRegexSyntax: malformed regex (unbalanced brackets, invalid
	// quantifier, a backwards character-class range). A range is checked
	// only for order, so one such as A-z that spans letter categories is
	// accepted.
	KindRegexSyntax

	// KindRegularDefinition: duplicate name, forward reference, or an
	// alphabet-invariant violation in a regular definition.
	KindRegularDefinition

	// KindLexerCannotProduceToken: the composite simulator never reached
	// any accepting state on the remaining input.
	KindLexerCannotProduceToken

	// KindGrammar: malformed grammar string. Every `{...}` action name in
	// grammar text is registered on first sight, so no action name is
	// reported as unknown.
	KindGrammar

	// KindLLConflict: two productions map to the same (nonterminal,
	// terminal) LL(1) table cell.
	KindLLConflict

	// KindLRConflict: a SHIFT/REDUCE, REDUCE/REDUCE, ACCEPT/SHIFT, or
	// ACCEPT/REDUCE conflict arose during ACTION table construction.
	KindLRConflict

	// KindParseError: a run-time parse error — the input token was not
	// acceptable in the current parser state.
	KindParseError
)

func (k Kind) String() string {
	switch k {
	case KindRegexSyntax:
		return "RegexSyntaxError"
	case KindRegularDefinition:
		return "RegularDefinitionError"
	case KindLexerCannotProduceToken:
		return "LexerCannotProduceToken"
	case KindGrammar:
		return "GrammarError"
	case KindLLConflict:
		return "LLConflict"
	case KindLRConflict:
		return "LRConflict"
	case KindParseError:
		return "ParseError"
	default:
		return "(unset)"
	}
}

// langError is the single concrete error type this package produces; every
// exported constructor below returns one. It is unexported; callers only
// ever see the constructors and KindOf.
type langError struct {
	kind Kind
	msg  string
	wrap error
}

func (e *langError) Error() string {
	return e.msg
}

func (e *langError) Unwrap() error {
	return e.wrap
}

// Is reports whether target is another *langError of the same Kind, so
// errors.Is matches two errors of one kind; callers more
// typically use KindOf(err) == langerr.KindRegexSyntax directly.
func (e *langError) Is(target error) bool {
	other, ok := target.(*langError)
	if !ok {
		return false
	}
	return e.kind == other.kind
}

// KindOf returns the Kind of err if it (or something in its Unwrap chain)
// was produced by this package, or KindNone otherwise.
func KindOf(err error) Kind {
	for err != nil {
		if le, ok := err.(*langError); ok {
			return le.kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return KindNone
}

func newf(kind Kind, format string, args ...any) error {
	return &langError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, wrapped error, format string, args ...any) error {
	return &langError{kind: kind, msg: fmt.Sprintf(format, args...), wrap: wrapped}
}

// RegexSyntaxf builds a RegexSyntaxError.
func RegexSyntaxf(format string, args ...any) error {
	return newf(KindRegexSyntax, format, args...)
}

// RegularDefinitionf builds a RegularDefinitionError.
func RegularDefinitionf(format string, args ...any) error {
	return newf(KindRegularDefinition, format, args...)
}

// LexerCannotProduceTokenf builds a LexerCannotProduceToken error.
func LexerCannotProduceTokenf(format string, args ...any) error {
	return newf(KindLexerCannotProduceToken, format, args...)
}

// Grammarf builds a GrammarError.
func Grammarf(format string, args ...any) error {
	return newf(KindGrammar, format, args...)
}

// LLConflictf builds an LLConflict error.
func LLConflictf(format string, args ...any) error {
	return newf(KindLLConflict, format, args...)
}

// LRConflictf builds an LRConflict error. class names the parser class
// under construction ("SLR(1)", "canonical-LR(1)", "LALR(1)") so the message names
// the grammar class attempted.
func LRConflictf(class string, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return newf(KindLRConflict, "grammar is not %s: %s", class, msg)
}

// ParseErrorf builds a ParseError.
func ParseErrorf(format string, args ...any) error {
	return newf(KindParseError, format, args...)
}

// Wrap builds an error of the given kind that wraps cause, formatting its
// own message from format/args (cause's message is not automatically
// included; callers that want it should incorporate it themselves).
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return wrapf(kind, cause, format, args...)
}
