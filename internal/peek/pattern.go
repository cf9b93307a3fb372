package peek

import (
	"fmt"
	"regexp"
	"strings"

	"csspeek.dev/cpls/internal/selector"
)

// nestingMarker starts a symbol name that extends its parent's selector
const nestingMarker = "&"

// compoundSuffix matches what may follow a selector inside one compound
// selector: attribute brackets, pseudo-classes and pseudo-elements, and
// further chained classes or ids.
const compoundSuffix = `(?:\[[^\]]*\]|:{1,2}[\w\-()]+|\.[\w-]+|#[\w-]+)*\s*`

// tagPrefix requires a tag to start the name or follow whitespace or a
// combinator
const tagPrefix = `(?:^|[\s>+~])`

var universal = regexp.MustCompile(`\*\s*$`)

// Pattern matches stylesheet symbol names against one selector
type Pattern struct {
	selector  selector.Selector
	strict    *regexp.Regexp
	prefilter *regexp.Regexp
}

// Compile builds the strict and pre-filter patterns for a selector
func Compile(sel selector.Selector) (*Pattern, error) {
	if sel.Value == "" {
		return nil, fmt.Errorf("empty %s selector", sel.Kind)
	}

	value := escapeValue(sel.Value)

	var base, flags, prefix string
	switch sel.Kind {
	case selector.Class:
		base = `\.` + value
	case selector.ID:
		base = `#` + value
	case selector.Tag:
		base = value
		flags = `(?i)`
		prefix = tagPrefix
	default:
		return nil, fmt.Errorf("unknown selector kind %q", sel.Kind)
	}

	strict, err := regexp.Compile(flags + prefix + base + compoundSuffix + `$`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern for %s: %w", sel, err)
	}

	prefilter, err := regexp.Compile(flags + prefilterSource(sel, base))
	if err != nil {
		return nil, fmt.Errorf("failed to compile pre-filter for %s: %w", sel, err)
	}

	return &Pattern{selector: sel, strict: strict, prefilter: prefilter}, nil
}

// prefilterSource accepts any text a matching effective name could have been
// resolved from. A resolved name joins a parent with the text after an &, so
// besides the base pattern the text may hold & followed by any tail of the
// value.
func prefilterSource(sel selector.Selector, base string) string {
	alternatives := []string{base}
	for i := range sel.Value {
		if i == 0 {
			continue
		}
		alternatives = append(alternatives, regexp.QuoteMeta(nestingMarker)+escapeValue(sel.Value[i:]))
	}
	if sel.Kind == selector.Tag {
		alternatives = append(alternatives, `\*`)
	}
	return strings.Join(alternatives, "|")
}

// escapeValue quotes every character outside [\w-]. Stylesheets write such
// characters with a backslash escape (.sm\:flex), so one is allowed before
// each of them.
func escapeValue(value string) string {
	var b strings.Builder
	for _, r := range value {
		if isWordRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(`\\?`)
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Matches reports whether an effective symbol name denotes the selector.
// Tag selectors also match names ending in the universal selector.
func (p *Pattern) Matches(name string) bool {
	if p.strict.MatchString(name) {
		return true
	}
	return p.selector.Kind == selector.Tag && universal.MatchString(name)
}

// MayMatch reports whether raw stylesheet text could declare a matching
// symbol. False means the text can be skipped without parsing it.
func (p *Pattern) MayMatch(text string) bool {
	return p.prefilter.MatchString(text)
}
