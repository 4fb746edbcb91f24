// Package privacy masks personal information before a record is shared.
package privacy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	namePattern      = regexp.MustCompile(`[가-힣]{2,4}`)
	studentIDPattern = regexp.MustCompile(`\d{9}`)
	phonePattern     = regexp.MustCompile(`(\d{3})-\d{4}-(\d{4})`)
	emailPattern     = regexp.MustCompile(`([a-zA-Z0-9._-]+)@([a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+)`)
)

// Kind names the category of a detected value.
type Kind string

const (
	KindName      Kind = "name"
	KindStudentID Kind = "student_id"
	KindPhone     Kind = "phone"
	KindEmail     Kind = "email"
)

// Finding is one sensitive value found in text.
type Finding struct {
	Kind  Kind
	Value string
}

// MaskName keeps the first character of name and stars the rest.
func MaskName(name string) string {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return name
	}
	first, _ := utf8.DecodeRuneInString(name)
	return string(first) + strings.Repeat("*", n-1)
}

// MaskStudentID keeps the four-digit entrance year of a nine-digit id.
func MaskStudentID(id string) string {
	return studentIDPattern.ReplaceAllStringFunc(id, func(m string) string {
		return m[:4] + "*****"
	})
}

// MaskSensitiveInfo masks Korean names, student ids, phone numbers and
// email usernames found anywhere in text.
func MaskSensitiveInfo(text string) string {
	masked := namePattern.ReplaceAllStringFunc(text, MaskName)
	masked = MaskStudentID(masked)
	masked = phonePattern.ReplaceAllString(masked, "$1-****-$2")
	masked = emailPattern.ReplaceAllStringFunc(masked, func(m string) string {
		parts := emailPattern.FindStringSubmatch(m)
		user, domain := parts[1], parts[2]
		return user[:1] + strings.Repeat("*", max(len(user)-1, 3)) + "@" + domain
	})
	return masked
}

// DetectSensitiveInfo lists names, student ids and phone numbers in text,
// in that order.
func DetectSensitiveInfo(text string) []Finding {
	var out []Finding
	for _, m := range namePattern.FindAllString(text, -1) {
		out = append(out, Finding{Kind: KindName, Value: m})
	}
	for _, m := range studentIDPattern.FindAllString(text, -1) {
		out = append(out, Finding{Kind: KindStudentID, Value: m})
	}
	for _, m := range phonePattern.FindAllString(text, -1) {
		out = append(out, Finding{Kind: KindPhone, Value: m})
	}
	return out
}
