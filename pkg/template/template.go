// Package template expands "{{name}}" placeholders against a variable map.
// A simpler {{VAR}} / {{env:VAR}} regexp substitution grew here into the
// strict/lenient dual-mode substitutor the request executor and auth
// applier both depend on.
package template

import (
	"strings"

	"github.com/restkit/restkit/pkg/apperr"
)

// Find returns the ordered list of placeholder identifiers in template,
// preserving duplicates. An unmatched "{{" with no closing "}}" is a syntax
// error.
func Find(tmpl string) ([]string, error) {
	var names []string
	err := scan(tmpl, func(name string) string {
		names = append(names, name)
		return ""
	}, nil)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// HasPlaceholders reports whether template contains at least one
// well-formed "{{name}}" occurrence. If template has an unmatched "{{", it
// reports true whenever "{{" appears anywhere in it.
func HasPlaceholders(tmpl string) bool {
	names, err := Find(tmpl)
	if err != nil {
		return strings.Contains(tmpl, "{{")
	}
	return len(names) > 0
}

// SubstituteStrict expands every placeholder in template against vars.
// A placeholder absent from vars fails the whole expansion with
// apperr.MissingVariable. An unmatched "{{" is an apperr.InvalidSyntax.
func SubstituteStrict(tmpl string, vars map[string]string) (string, error) {
	var sb strings.Builder
	if err := scanInto(&sb, tmpl, func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}, true); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// SubstituteLenient expands every placeholder in template against vars. A
// missing identifier is replaced with the empty string. An unmatched "{{"
// is preserved verbatim rather than treated as an error.
func SubstituteLenient(tmpl string, vars map[string]string) string {
	var sb strings.Builder
	_ = scanInto(&sb, tmpl, func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}, false)
	return sb.String()
}

// scan walks template, invoking replace for every well-formed placeholder
// (its return value is discarded by Find) and validate (if non-nil) to
// check each identifier before substitution proceeds. It reports a syntax
// error for any unmatched "{{".
func scan(tmpl string, replace func(name string) string, validate func(name string) error) error {
	i := 0
	for i < len(tmpl) {
		open := strings.Index(tmpl[i:], "{{")
		if open < 0 {
			break
		}
		openAt := i + open
		close := strings.Index(tmpl[openAt+2:], "}}")
		if close < 0 {
			return &apperr.InvalidSyntax{Msg: "unmatched \"{{\" with no closing \"}}\""}
		}
		closeAt := openAt + 2 + close
		name := strings.TrimSpace(tmpl[openAt+2 : closeAt])
		if validate != nil {
			if err := validate(name); err != nil {
				return err
			}
		}
		replace(name)
		i = closeAt + 2
	}
	return nil
}

// scanInto writes the expansion of template into sb. lookup reports the
// value and presence of a variable. When strictMissing is true, a missing
// variable aborts with apperr.MissingVariable and an unmatched "{{" aborts
// with apperr.InvalidSyntax; when false, a missing variable becomes "" and
// an unmatched "{{" is copied verbatim.
func scanInto(sb *strings.Builder, tmpl string, lookup func(name string) (string, bool), strictMissing bool) error {
	i := 0
	for i < len(tmpl) {
		open := strings.Index(tmpl[i:], "{{")
		if open < 0 {
			sb.WriteString(tmpl[i:])
			return nil
		}
		openAt := i + open
		sb.WriteString(tmpl[i:openAt])

		close := strings.Index(tmpl[openAt+2:], "}}")
		if close < 0 {
			if strictMissing {
				return &apperr.InvalidSyntax{Msg: "unmatched \"{{\" with no closing \"}}\""}
			}
			sb.WriteString(tmpl[openAt:])
			return nil
		}
		closeAt := openAt + 2 + close
		name := strings.TrimSpace(tmpl[openAt+2 : closeAt])
		val, ok := lookup(name)
		if !ok {
			if strictMissing {
				return &apperr.MissingVariable{Name: name}
			}
			val = ""
		}
		sb.WriteString(val)
		i = closeAt + 2
	}
	return nil
}
