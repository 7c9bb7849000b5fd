// Package apierr defines the typed error taxonomy shared by every
// composition operation. All errors are caused by user input; none are
// transient or retryable.
package apierr

// Codes for every error kind the service can return.
const (
	CodeInvalidKey               = "INVALID_KEY"
	CodeInvalidNote              = "INVALID_NOTE"
	CodeInvalidRange             = "INVALID_RANGE"
	CodeInvalidInterval          = "INVALID_INTERVAL"
	CodeInvalidChordSymbol       = "INVALID_CHORD_SYMBOL"
	CodeInvalidTimeSignature     = "INVALID_TIME_SIGNATURE"
	CodeParseError               = "PARSE_ERROR"
	CodeUnsatisfiableConstraints = "UNSATISFIABLE_CONSTRAINTS"
	CodeGenerationFailed         = "GENERATION_FAILED"
	CodeEmptyInput               = "EMPTY_INPUT"
	CodeNotImplemented           = "NOT_IMPLEMENTED"
	CodeInternal                 = "INTERNAL_ERROR"
)

// Error is a user-input failure with a machine-readable code, an optional
// offending field name and example-value suggestions.
type Error struct {
	Code        string
	Message     string
	Field       string
	Suggestions []string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithField attaches the offending field name.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSuggestions attaches example values the caller could try instead.
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = suggestions
	return e
}

// InvalidKey reports a malformed key signature.
func InvalidKey(message string) *Error {
	return New(CodeInvalidKey, message).WithField("key").
		WithSuggestions("C major", "D minor", "G dorian")
}

// InvalidNote reports a malformed note name.
func InvalidNote(message, field string) *Error {
	return New(CodeInvalidNote, message).WithField(field).
		WithSuggestions("C4", "F#5", "Bb3")
}

// InvalidRange reports an impossible pitch range.
func InvalidRange(message string) *Error {
	return New(CodeInvalidRange, message).WithField("range_low")
}

// InvalidInterval reports a malformed interval name.
func InvalidInterval(message, field string) *Error {
	return New(CodeInvalidInterval, message).WithField(field).
		WithSuggestions("P5", "M3", "m7")
}

// InvalidChordSymbol reports an unparseable chord symbol.
func InvalidChordSymbol(message string) *Error {
	return New(CodeInvalidChordSymbol, message).WithField("chord_symbol").
		WithSuggestions("Cmaj7", "Dm7", "G7", "Am", "F#dim7")
}

// InvalidTimeSignature reports a malformed time signature.
func InvalidTimeSignature(message string) *Error {
	return New(CodeInvalidTimeSignature, message).WithField("time_signature").
		WithSuggestions("4/4", "3/4", "6/8")
}

// Parse reports unrecognized or malformed musical input text.
func Parse(message string) *Error {
	return New(CodeParseError, message)
}

// Unsatisfiable reports valid inputs that admit no acceptable result.
func Unsatisfiable(message, field string) *Error {
	return New(CodeUnsatisfiableConstraints, message).WithField(field)
}

// GenerationFailed reports an exhausted attempt budget.
func GenerationFailed(message string) *Error {
	return New(CodeGenerationFailed, message)
}

// EmptyInput reports missing required musical content.
func EmptyInput(message, field string) *Error {
	return New(CodeEmptyInput, message).WithField(field)
}
