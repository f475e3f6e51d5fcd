package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds node, parameter and effect identifiers.
const maxIDLength = 128

// idRegex matches node ids and operation kinds: lower-case words joined by
// '-', '_' or digits, optionally namespaced with a single ':' ("gimp:layer-mode").
var idRegex = regexp.MustCompile(`^([a-z][a-z0-9]*:)?[a-z][a-z0-9_-]*$`)

// ValidateID validates a node id or operation kind used in a definition.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Lower-case letters, digits, '-', '_' and one optional namespace prefix
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeConfiguration, "id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeConfiguration, "id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeConfiguration, "id %q contains whitespace or control characters", id)
		}
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeConfiguration, "invalid id: %q", id)
	}
	return nil
}

// paramNameRegex matches exposed and local parameter names. Both styles seen
// in filter libraries are accepted: "in_low" and "std-dev-x".
var paramNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateParamName validates an exposed or local parameter name.
func ValidateParamName(name string) error {
	if name == "" {
		return New(ErrCodeConfiguration, "parameter name cannot be empty")
	}
	if len(name) > maxIDLength {
		return New(ErrCodeConfiguration, "parameter name too long (max %d characters)", maxIDLength)
	}
	if strings.ContainsAny(name, " \t\n") {
		return New(ErrCodeConfiguration, "parameter name %q contains whitespace", name)
	}
	if !paramNameRegex.MatchString(name) {
		return New(ErrCodeConfiguration, "invalid parameter name: %q", name)
	}
	return nil
}
