// Package parser turns raw OCR text into structured identity fields.
// It is tolerant by design: OCR output from identity documents is noisy, so
// missing fields are represented, never signalled as errors.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// datePattern pairs a regex for a date-like token with the Go layouts used to
// normalize it. Separators . and - are folded to / before parsing.
type datePattern struct {
	re      *regexp.Regexp
	layouts []string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`\d{4}[./-]\d{2}[./-]\d{2}`), []string{"2006/01/02"}},
	{regexp.MustCompile(`\d{2}[./-]\d{2}[./-]\d{4}`), []string{"02/01/2006"}},
	{regexp.MustCompile(`\d{2}[./-]\d{2}[./-]\d{2}`), []string{"02/01/06"}},
	{regexp.MustCompile(`(?i)\d{1,2}\s+[A-Z]{3,}\s+\d{4}`), []string{"2 Jan 2006", "2 January 2006"}},
}

var (
	dobLabels  = []string{"DOB", "DATE OF BIRTH", "BIRTH"}
	skipWords  = []string{"ADDRESS", "GOVT", "INDIA", "PIN", "LICENSE", "LICENCE"}
	digitRe    = regexp.MustCompile(`\d`)
	labeledTop = 40 // only the top of the document carries labeled fields
	nameTop    = 6
)

// Parse extracts a name and date of birth from OCR text. Labeled lines
// ("NAME: ...", "DOB ...") are preferred; otherwise a date-like token
// anywhere in the text and a plausible name near the top are accepted.
func Parse(raw string) domain.ExtractedFields {
	var fields domain.ExtractedFields

	lines := nonEmptyLines(raw)

	top := lines
	if len(top) > labeledTop {
		top = top[:labeledTop]
	}
	for _, line := range top {
		upper := strings.ToUpper(line)
		if fields.Name == "" && strings.Contains(upper, "NAME") && strings.Contains(line, ":") {
			if candidate := strings.TrimSpace(line[strings.Index(line, ":")+1:]); candidate != "" {
				fields.Name = candidate
			}
		}
		if fields.DateOfBirth == nil && hasAnyLabel(upper, dobLabels) {
			fields.DateOfBirth = findDate(line)
		}
		if fields.Name != "" && fields.DateOfBirth != nil {
			break
		}
	}

	// Fallback: accept a date-like token anywhere in the document.
	if fields.DateOfBirth == nil {
		for _, line := range lines {
			if d := findDate(line); d != nil {
				fields.DateOfBirth = d
				break
			}
		}
	}

	// Fallback: first digit-free multi-word line near the top that does not
	// look like an address or issuer boilerplate.
	if fields.Name == "" {
		limit := len(lines)
		if limit > nameTop {
			limit = nameTop
		}
		for _, line := range lines[:limit] {
			if digitRe.MatchString(line) || hasAnyLabel(strings.ToUpper(line), skipWords) {
				continue
			}
			if len(strings.Fields(line)) >= 2 {
				fields.Name = line
				break
			}
		}
	}

	return fields
}

func nonEmptyLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func hasAnyLabel(upper string, labels []string) bool {
	for _, label := range labels {
		if strings.Contains(upper, label) {
			return true
		}
	}
	return false
}

// findDate returns the first token in line that parses as a calendar date,
// normalized to UTC midnight. Numeric dates are read day-first.
func findDate(line string) *time.Time {
	for _, p := range datePatterns {
		match := p.re.FindString(line)
		if match == "" {
			continue
		}
		normalized := strings.NewReplacer(".", "/", "-", "/").Replace(match)
		for _, layout := range p.layouts {
			if t, err := time.Parse(layout, titleCaseMonth(normalized)); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

// titleCaseMonth rewrites "14 JAN 1990" to "14 Jan 1990" so time.Parse
// accepts month names regardless of the OCR casing.
func titleCaseMonth(s string) string {
	parts := strings.Fields(s)
	for i, part := range parts {
		if len(part) >= 3 && !digitRe.MatchString(part) {
			parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return strings.Join(parts, " ")
}
