package contact

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	sanitizedNameCap    = 100
	sanitizedPhoneCap   = 20
	sanitizedDefaultCap = 500
)

var (
	jsPrefixPattern = regexp.MustCompile(`(?i)javascript:`)
	phoneCharsOnly  = regexp.MustCompile(`[^0-9+\-() ]`)
)

// kuwaitTime resolves Asia/Kuwait once; submission timestamps are rendered
// in clinic-local time so staff never have to convert from UTC.
var kuwaitTime = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Kuwait")
	if err != nil {
		return time.FixedZone("AST", 3*60*60)
	}
	return loc
}()

// timestampLayout matches the format the clinic sees in notification emails.
const timestampLayout = "January 2, 2006 at 3:04 PM"

// nowFunc is replaced in tests.
var nowFunc = time.Now

// Sanitize normalizes a submission that already passed validation. It never
// fails: calling it on arbitrary input just yields stripped, length-capped
// fields. The timestamp is stamped here, server-side.
func Sanitize(req SubmissionRequest) SanitizedSubmission {
	return SanitizedSubmission{
		Name:      CleanText(req.Name, sanitizedNameCap),
		Phone:     CleanPhone(req.Phone),
		Email:     CleanEmail(req.Email),
		Service:   CleanText(req.Service, sanitizedDefaultCap),
		Message:   CleanText(req.Message, sanitizedDefaultCap),
		Timestamp: nowFunc().In(kuwaitTime).Format(timestampLayout),
	}
}

// CleanText trims, strips angle brackets and javascript: prefixes, and caps
// length. Angle brackets are removed outright because the value is later
// interpolated into email bodies; template escaping is the second line of
// defense, not the only one.
func CleanText(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	// Loop: removing one javascript: can splice the surrounding text into
	// another one ("jjavascript:avascript:").
	for jsPrefixPattern.MatchString(s) {
		s = jsPrefixPattern.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(truncateRunes(s, maxLen))
}

// CleanPhone keeps digits, plus, dashes, spaces and parentheses, capped at
// a sane length for display.
func CleanPhone(s string) string {
	s = phoneCharsOnly.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(truncateRunes(s, sanitizedPhoneCap))
}

// CleanEmail lowercases and trims, capped at the validation limit.
func CleanEmail(s string) string {
	return truncateRunes(strings.ToLower(strings.TrimSpace(s)), maxEmailLen)
}

// truncateRunes caps s at max characters without splitting a multibyte
// rune, so capped Arabic text stays valid UTF-8.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
