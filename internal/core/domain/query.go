package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Op defines how a query executes and what shape its result takes.
type Op string

// Available operation kinds, selected by the suffix on the query name.
const (
	// OpFetchAll returns every matching row. No suffix.
	OpFetchAll Op = "fetch_all"

	// OpFetchOne returns the first matching row. Suffix "^".
	OpFetchOne Op = "fetch_one"

	// OpFetchScalar returns the first column of the first row. Suffix "$".
	OpFetchScalar Op = "fetch_scalar"

	// OpMutate returns the number of affected rows. Suffix "!".
	OpMutate Op = "mutate"

	// OpMutateReturningID returns the id of the last inserted row. Suffix "<!".
	OpMutateReturningID Op = "mutate_returning_id"
)

// IsValid returns true if the operation kind is recognised.
func (o Op) IsValid() bool {
	switch o {
	case OpFetchAll, OpFetchOne, OpFetchScalar, OpMutate, OpMutateReturningID:
		return true
	default:
		return false
	}
}

// IsMutation returns true if the operation writes to the database.
func (o Op) IsMutation() bool {
	return o == OpMutate || o == OpMutateReturningID
}

// String returns the string representation.
func (o Op) String() string {
	return string(o)
}

// Suffix returns the name suffix that selects this operation kind.
func (o Op) Suffix() string {
	switch o {
	case OpFetchOne:
		return "^"
	case OpFetchScalar:
		return "$"
	case OpMutate:
		return "!"
	case OpMutateReturningID:
		return "<!"
	default:
		return ""
	}
}

// Description returns a human-readable description of the operation kind.
func (o Op) Description() string {
	switch o {
	case OpFetchAll:
		return "all rows"
	case OpFetchOne:
		return "one row"
	case OpFetchScalar:
		return "scalar value"
	case OpMutate:
		return "affected row count"
	case OpMutateReturningID:
		return "last insert id"
	default:
		return "unknown"
	}
}

// Query is one parsed, named SQL statement. It is never mutated after parsing.
type Query struct {
	// Name is the base identifier without the operation suffix.
	Name string

	// SQL is the statement text including the trailing semicolon.
	SQL string

	// Args are the distinct named parameters in first-seen order.
	Args []string

	// Op is the operation kind inferred from the name suffix.
	Op Op

	// Source is the file the query was read from, if any.
	Source string
}

// Header returns the annotated name as written in the source file.
func (q Query) Header() string {
	return q.Name + q.Op.Suffix()
}

var queryNamePattern = regexp.MustCompile(`^([a-z_][a-z0-9_]*)(\^|\$|!|<!)?$`)

// ParseQueryName splits an annotated name into its identifier and operation kind.
func ParseQueryName(token string) (string, Op, error) {
	m := queryNamePattern.FindStringSubmatch(token)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, token)
	}

	var op Op
	switch m[2] {
	case "":
		op = OpFetchAll
	case "^":
		op = OpFetchOne
	case "$":
		op = OpFetchScalar
	case "!":
		op = OpMutate
	case "<!":
		op = OpMutateReturningID
	}
	return m[1], op, nil
}

// ReservedNames are engine entry points that a query may not shadow.
var ReservedNames = []string{
	"call",
	"close",
	"connect",
	"disconnect",
	"queries",
	"raw",
	"raw_exec",
	"raw_one",
	"raw_value",
	"transaction",
}

// IsReservedName returns true if name collides with an engine entry point.
func IsReservedName(name string) bool {
	for _, r := range ReservedNames {
		if r == name {
			return true
		}
	}
	return false
}

// ValidateQueries checks a complete query list for duplicate and reserved names.
func ValidateQueries(queries []Query) error {
	seen := make(map[string]Query, len(queries))
	for _, q := range queries {
		if IsReservedName(q.Name) {
			return fmt.Errorf("%w: %q (%s)", ErrReservedName, q.Name, describeSource(q))
		}
		if prev, ok := seen[q.Name]; ok {
			return fmt.Errorf("%w: %q defined in %s and %s",
				ErrDuplicateName, q.Name, describeSource(prev), describeSource(q))
		}
		seen[q.Name] = q
	}
	return nil
}

func describeSource(q Query) string {
	if q.Source == "" {
		return "<inline>"
	}
	return q.Source
}

// ExtractParams returns the distinct :name parameters of a statement in
// first-seen order. Quoted strings, quoted identifiers, comments and "::"
// casts are skipped.
func ExtractParams(sql string) []string {
	var params []string
	seen := make(map[string]bool)

	for i := 0; i < len(sql); i++ {
		switch c := sql[i]; {
		case c == '\'' || c == '"' || c == '`':
			end := strings.IndexByte(sql[i+1:], c)
			if end < 0 {
				return params
			}
			i += end + 1
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				return params
			}
			i += end
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return params
			}
			i += end + 3
		case c == ':':
			if i+1 < len(sql) && sql[i+1] == ':' {
				i++
				continue
			}
			j := i + 1
			for j < len(sql) && isIdentByte(sql[j], j == i+1) {
				j++
			}
			if j == i+1 {
				continue
			}
			name := sql[i+1 : j]
			if !seen[name] {
				seen[name] = true
				params = append(params, name)
			}
			i = j - 1
		}
	}
	return params
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	default:
		return false
	}
}

// Args holds the named arguments of one call.
type Args map[string]any

// Names returns the argument names in sorted order.
func (a Args) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CheckArgs verifies that args supplies exactly the parameters q declares.
func CheckArgs(q Query, args Args) error {
	for _, name := range q.Args {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("%w: %s requires %q", ErrMissingArgument, q.Name, name)
		}
	}
	if len(args) == len(q.Args) {
		return nil
	}
	declared := make(map[string]bool, len(q.Args))
	for _, name := range q.Args {
		declared[name] = true
	}
	for _, name := range args.Names() {
		if !declared[name] {
			return fmt.Errorf("%w: %s does not take %q", ErrUnexpectedArgument, q.Name, name)
		}
	}
	return nil
}
