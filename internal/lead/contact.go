package lead

import (
	"regexp"
	"strings"
)

func lowercase(s string) string { return strings.ToLower(s) }

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// phonePatterns are tried in order; the first pattern that matches anything
// wins and its first match is used.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+971[\s-]?\d{1,2}[\s-]?\d{3}[\s-]?\d{4}`),          // UAE format
	regexp.MustCompile(`\+\d{1,3}[\s-]?\d{3,4}[\s-]?\d{3,4}[\s-]?\d{3,4}`), // international
	regexp.MustCompile(`\d{3}[\s-]?\d{3}[\s-]?\d{4}`),                      // generic
}

// namePatterns recognise self-introductions; tried in order, first match
// wins. The capture group is the name.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:i'm|i am|my name is|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`(?i)(?:call me|contact)\s+([A-Z][a-z]+)`),
}

// Contact field keys used in session lead info.
const (
	FieldEmail = "email"
	FieldPhone = "phone"
	FieldName  = "name"
)

// ExtractContactInfo pulls contact fields out of free text. Each field is
// optional and independently present in the result; for each, the first
// match wins.
func ExtractContactInfo(message string) map[string]string {
	info := make(map[string]string)

	if email := emailPattern.FindString(message); email != "" {
		info[FieldEmail] = email
	}

	for _, p := range phonePatterns {
		if phone := p.FindString(message); phone != "" {
			info[FieldPhone] = phone
			break
		}
	}

	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(message); m != nil {
			info[FieldName] = m[1]
			break
		}
	}

	return info
}
