// Package contracts extracts the externally visible surface of Solidity contracts from source text.
//
// The parser is a lightweight line-oriented scanner, not a grammar-complete Solidity parser. Declarations spanning
// multiple lines, inheritance lists, modifiers, and nested braces are not handled. That is acceptable for the
// fuzzing use case: a declaration the scanner cannot read degrades to a skipped method, never to a
// misinterpretation.
package contracts

import (
	"strings"

	"github.com/ExtropyIO/Fuzzhead/fuzzing/types"
)

// unknownContractName is used when method declarations are found in source with no enclosing contract declaration.
const unknownContractName = "UnknownContract"

// visibilityKeywords lists the visibility keywords in the order used to break positional ties.
var visibilityKeywords = []struct {
	keyword    string
	visibility Visibility
}{
	{"public", VisibilityPublic},
	{"external", VisibilityExternal},
	{"internal", VisibilityInternal},
	{"private", VisibilityPrivate},
}

// ParseSource scans the provided contract source text and returns the surface of each contract declared within it.
// The filename is used for diagnostics only.
func ParseSource(source string, filename string) ([]ContractSurface, error) {
	_ = filename

	var surfaces []ContractSurface
	var current *ContractSurface

	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "contract ") {
			if name := contractNameFromLine(line); name != "" {
				surfaces = append(surfaces, ContractSurface{Name: name})
				current = &surfaces[len(surfaces)-1]
			}
			continue
		}

		if !isMethodLine(line) {
			continue
		}
		method := parseMethodLine(line)

		// Methods declared before any contract header are grouped under a placeholder surface so that flat
		// snippets still fuzz.
		if current == nil {
			surfaces = append(surfaces, ContractSurface{Name: unknownContractName})
			current = &surfaces[len(surfaces)-1]
		}
		current.Methods = append(current.Methods, method)
	}

	return surfaces, nil
}

// contractNameFromLine extracts the contract identifier from a trimmed "contract ..." line: the next
// whitespace-delimited token with any trailing brace stripped.
func contractNameFromLine(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(fields[1], "{", ""))
}

// isMethodLine reports whether a trimmed line begins a method declaration.
func isMethodLine(line string) bool {
	return strings.HasPrefix(line, "function ") ||
		strings.HasPrefix(line, "constructor") ||
		strings.HasPrefix(line, "fallback") ||
		strings.HasPrefix(line, "receive")
}

// parseMethodLine extracts a method descriptor from a single declaration line.
func parseMethodLine(line string) Method {
	method := Method{
		IsConstructor: strings.HasPrefix(line, "constructor"),
		IsFallback:    strings.HasPrefix(line, "fallback"),
		IsReceive:     strings.HasPrefix(line, "receive"),
	}

	switch {
	case method.IsConstructor:
		method.Name = "constructor"
	case method.IsFallback:
		method.Name = "fallback"
	case method.IsReceive:
		method.Name = "receive"
	default:
		// The function name is the identifier immediately preceding the first parenthesis.
		head, _, _ := strings.Cut(line, "(")
		fields := strings.Fields(head)
		if len(fields) > 0 {
			method.Name = fields[len(fields)-1]
		} else {
			method.Name = "unknown"
		}
	}

	method.Visibility = visibilityFromLine(line)
	method.Parameters = parametersFromLine(line)
	return method
}

// visibilityFromLine resolves the first visibility keyword appearing on the line, defaulting to public when none
// is present.
func visibilityFromLine(line string) Visibility {
	visibility := VisibilityPublic
	firstIndex := -1
	for _, entry := range visibilityKeywords {
		if idx := strings.Index(line, entry.keyword); idx >= 0 && (firstIndex < 0 || idx < firstIndex) {
			firstIndex = idx
			visibility = entry.visibility
		}
	}
	return visibility
}

// parametersFromLine extracts the comma-separated parameter fragments between the matching parentheses on the
// declaration line. Each fragment's first whitespace-delimited token is the type, the second the name. Fragments
// without a type token are dropped.
func parametersFromLine(line string) []Parameter {
	open := strings.Index(line, "(")
	if open < 0 {
		return nil
	}
	closeIdx := matchingParenIndex(line, open)
	if closeIdx < 0 {
		return nil
	}

	paramsText := line[open+1 : closeIdx]
	if strings.TrimSpace(paramsText) == "" {
		return nil
	}

	var parameters []Parameter
	for _, fragment := range strings.Split(paramsText, ",") {
		fields := strings.Fields(fragment)
		if len(fields) == 0 {
			continue
		}
		parameter := Parameter{Type: types.ParseType(fields[0])}
		if len(fields) > 1 {
			parameter.Name = fields[1]
		}
		parameters = append(parameters, parameter)
	}
	return parameters
}

// matchingParenIndex returns the index of the parenthesis closing the one at open, or -1 if the line does not
// balance.
func matchingParenIndex(line string, open int) int {
	depth := 0
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
