package cost

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrParse is wrapped by every cost function parse failure.
var ErrParse = errors.New("parse cost function")

// maxErrorContext bounds how much of the offending input is quoted in error messages.
const maxErrorContext = 32

// ParseError reports malformed plain-text cost function input.
type ParseError struct {
	// Input is the unparsed input starting at the offending position.
	Input string
	// Reason describes what was wrong.
	Reason string
}

// Error implements error.
func (e *ParseError) Error() string {
	context := e.Input
	if len(context) > maxErrorContext {
		context = context[:maxErrorContext] + "..."
	}

	return fmt.Sprintf("%v: %s at %q", ErrParse, e.Reason, context)
}

// Unwrap returns ErrParse so callers can match with errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

func parseErr(input, reason string) error {
	return &ParseError{Input: input, Reason: reason}
}

// WritePlain writes the function as two aligned rows: indices, then costs.
// The index row ends with a newline, the cost row does not.
func (f Function) WritePlain(w io.Writer) error {
	widths := make([]int, len(f.entries))
	for i, e := range f.entries {
		widths[i] = max(len(formatIndex(e.Index)), len(e.Cost.String()))
	}

	var sb strings.Builder

	for i, e := range f.entries {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(padLeft(formatIndex(e.Index), widths[i]))
	}

	sb.WriteByte('\n')

	for i, e := range f.entries {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(padLeft(e.Cost.String(), widths[i]))
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write cost function: %w", err)
	}

	return nil
}

// String returns the plain-text form of the function.
func (f Function) String() string {
	var sb strings.Builder

	// strings.Builder never fails.
	_ = f.WritePlain(&sb)

	return sb.String()
}

// MarshalText implements encoding.TextMarshaler with the plain-text format.
func (f Function) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with the plain-text format.
func (f *Function) UnmarshalText(text []byte) error {
	parsed, err := ParseFunction(string(text))
	if err != nil {
		return err
	}

	*f = parsed

	return nil
}

func formatIndex(index int64) string {
	switch index {
	case IndexMax:
		return literalInf
	case IndexMin:
		return literalNegInf
	default:
		return strconv.FormatInt(index, 10)
	}
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}

	return strings.Repeat(" ", width-len(s)) + s
}

// ParseFunction parses a complete plain-text cost function. Only whitespace may
// follow the cost row.
func ParseFunction(input string) (Function, error) {
	f, rest, err := ParsePlain(input)
	if err != nil {
		return Function{}, err
	}

	if strings.TrimSpace(rest) != "" {
		return Function{}, parseErr(rest, "unexpected trailing input")
	}

	return f, nil
}

// ParsePlain parses one plain-text cost function from the start of input and
// returns the remaining input after the cost row.
func ParsePlain(input string) (Function, string, error) {
	rest := skipAnyWhitespace(input)

	var indices []int64

	for !startsWithNewline(rest) {
		if rest == "" {
			return Function{}, rest, parseErr(input, "missing cost row")
		}

		index, next, err := parseInfInteger(rest)
		if err != nil {
			return Function{}, rest, err
		}

		indices = append(indices, index)
		rest = skipWhitespace(next)
	}

	rest = skipAnyWhitespace(rest)

	var costs []Cost

	for !startsWithNewline(rest) && rest != "" {
		value, next, err := parseInfInteger(rest)
		if err != nil {
			return Function{}, rest, err
		}

		if value < 0 {
			return Function{}, rest, parseErr(rest, "costs must not be negative")
		}

		costs = append(costs, Cost(value))
		rest = skipWhitespace(next)
	}

	switch {
	case len(indices) != len(costs):
		return Function{}, rest, parseErr(input, fmt.Sprintf("%d indices but %d costs", len(indices), len(costs)))
	case len(indices) == 0:
		return Function{}, rest, parseErr(input, "empty cost function")
	case indices[0] != IndexMin:
		return Function{}, rest, parseErr(input, "first index must be -inf")
	}

	entries := make([]Entry, len(indices))
	for i := range indices {
		if i > 0 && indices[i-1] >= indices[i] {
			return Function{}, rest, parseErr(input, "indices must be strictly increasing")
		}

		entries[i] = Entry{Index: indices[i], Cost: costs[i]}
	}

	return Function{entries: entries}, rest, nil
}

// parseInfInteger parses an optionally signed integer with underscore separators,
// or the literals inf and -inf which map to the int64 extremes.
func parseInfInteger(input string) (int64, string, error) {
	if input == "" {
		return 0, input, parseErr(input, "expected integer")
	}

	pos := 0
	negative := false

	switch input[0] {
	case '-':
		negative = true
		pos++
	case '+':
		pos++
	}

	if strings.HasPrefix(input[pos:], literalInf) {
		pos += len(literalInf)
		if !atTokenBoundary(input[pos:]) {
			return 0, input, parseErr(input, "malformed infinity literal")
		}

		if negative {
			return IndexMin, input[pos:], nil
		}

		return IndexMax, input[pos:], nil
	}

	var result int64

	digits := 0

	for ; pos < len(input); pos++ {
		ch := input[pos]
		if ch == '_' {
			continue
		}

		if ch < '0' || ch > '9' {
			break
		}

		digits++
		digit := int64(ch - '0')

		next, ok := accumulate(result, digit, negative)
		if !ok {
			return 0, input, parseErr(input, "integer overflow")
		}

		result = next
	}

	if digits == 0 {
		return 0, input, parseErr(input, "expected integer")
	}

	if !atTokenBoundary(input[pos:]) {
		return 0, input, parseErr(input[pos:], "unexpected character in integer")
	}

	return result, input[pos:], nil
}

// accumulate computes result*10 ± digit with overflow detection.
func accumulate(result, digit int64, negative bool) (int64, bool) {
	const base = 10

	if negative {
		if result < (IndexMin+digit)/base {
			return 0, false
		}

		return result*base - digit, true
	}

	if result > (IndexMax-digit)/base {
		return 0, false
	}

	return result*base + digit, true
}

func atTokenBoundary(s string) bool {
	return s == "" || s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r'
}

func startsWithNewline(s string) bool {
	return strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r")
}

func skipWhitespace(s string) string {
	return strings.TrimLeft(s, " \t")
}

func skipAnyWhitespace(s string) string {
	return strings.TrimLeft(s, " \t\r\n")
}
