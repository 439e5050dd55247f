package expr

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Mode controls what happens to a placeholder without a binding
type Mode int

const (
	// Lenient leaves unresolved placeholders untouched so a later stage can resolve them.
	Lenient Mode = iota
	// Strict fails on the first unresolved placeholder.
	Strict
	// None disables evaluation.
	None
)

// ErrUnresolved is wrapped by every UnresolvedError
var ErrUnresolved = errors.New("unresolved placeholder")

// UnresolvedError reports a placeholder that has no binding in the property table
type UnresolvedError struct {
	Token string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnresolved, e.Token)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}

var placeholder = regexp.MustCompile(`\$\{([^${}]+)\}`)

// Evaluate substitutes every ${name} in text with its value from props
func Evaluate(text string, props map[string]string, mode Mode) (string, error) {
	if mode == None || len(text) < 3 {
		return text, nil
	}

	var unresolved *UnresolvedError
	out := placeholder.ReplaceAllStringFunc(text, func(token string) string {
		name := token[2 : len(token)-1]
		if value, ok := props[name]; ok {
			return value
		}
		if mode == Strict && unresolved == nil {
			unresolved = &UnresolvedError{Token: token}
		}
		return token
	})
	if unresolved != nil {
		return "", unresolved
	}
	return out, nil
}

// Placeholders returns the distinct placeholder names in text, in order of appearance
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// LoadFile reads a flat YAML mapping of property names to scalar values
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a flat YAML mapping of property names to scalar values
func Parse(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse properties: %w", err)
	}

	props := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			props[key] = ""
		case string:
			props[key] = v
		case bool:
			props[key] = strconv.FormatBool(v)
		case int:
			props[key] = strconv.Itoa(v)
		case float64:
			props[key] = strconv.FormatFloat(v, 'g', -1, 64)
		default:
			return nil, fmt.Errorf("property %q must be a scalar, got %T", key, value)
		}
	}
	return props, nil
}
