// Package command parses ":name args..." directives typed into the search box.
package command

import (
	"strings"
	"unicode"
)

// Type is the name of a command
type Type string

const (
	TypeTheme  Type = "theme"
	TypeExport Type = "export"
	TypeHelp   Type = "help"
	TypeClear  Type = "clear"
)

// Prefix marks input as a command rather than a search
const Prefix = ":"

// Command is a catalog entry
type Command struct {
	Type        Type
	Args        []string // allowed argument values, for display and completion
	Description string
}

// Usage renders the command the way it is typed, e.g. ":theme dark|light"
func (c Command) Usage() string {
	if len(c.Args) == 0 {
		return Prefix + string(c.Type)
	}
	return Prefix + string(c.Type) + " " + strings.Join(c.Args, "|")
}

// Parsed is the result of parsing one input string
type Parsed struct {
	Type Type
	Args []string
}

// Arg returns the i-th argument or "" when absent
func (p Parsed) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

var catalog = []Command{
	{Type: TypeTheme, Args: []string{"dark", "light"}, Description: "Switch theme"},
	{Type: TypeExport, Args: []string{"json", "md"}, Description: "Export results"},
	{Type: TypeHelp, Description: "Show keyboard shortcuts"},
	{Type: TypeClear, Description: "Clear results and URL"},
}

// Catalog returns the known commands in declaration order
func Catalog() []Command {
	out := make([]Command, len(catalog))
	for i, c := range catalog {
		out[i] = Command{Type: c.Type, Args: append([]string(nil), c.Args...), Description: c.Description}
	}
	return out
}

// IsCommand reports whether input uses command syntax
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), Prefix)
}

// Parse returns nil when input is not a command or names an unknown one.
// Arguments are returned verbatim; validating them is up to the caller.
func Parse(input string) *Parsed {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, Prefix) {
		return nil
	}

	// The name must follow the colon directly; ": theme" has an empty name.
	rest := trimmed[len(Prefix):]
	if rest == "" || strings.TrimLeftFunc(rest, unicode.IsSpace) != rest {
		return nil
	}
	parts := strings.Fields(rest)
	name := Type(strings.ToLower(parts[0]))

	for _, c := range catalog {
		if c.Type == name {
			return &Parsed{Type: c.Type, Args: parts[1:]}
		}
	}
	return nil
}

// Suggestions returns catalog entries matching a partially typed command.
// A lone ":" lists everything. Otherwise an entry matches when its name starts
// with the typed text (case-insensitive) or its ":name" form starts with the
// lower-cased input.
func Suggestions(partial string) []Command {
	trimmed := strings.TrimSpace(partial)
	if !strings.HasPrefix(trimmed, Prefix) {
		return nil
	}

	typed := strings.ToLower(trimmed[len(Prefix):])
	if typed == "" {
		return Catalog()
	}

	lowered := strings.ToLower(trimmed)
	var out []Command
	for _, c := range Catalog() {
		name := string(c.Type)
		if strings.HasPrefix(name, typed) || strings.HasPrefix(Prefix+name, lowered) {
			out = append(out, c)
		}
	}
	return out
}

// Complete returns input completed to the first suggestion, or input unchanged
// when nothing matches
func Complete(input string) string {
	s := Suggestions(input)
	if len(s) == 0 {
		return input
	}
	return Prefix + string(s[0].Type) + " "
}
