package services

import (
	"fmt"
	"regexp"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

// ContentFilter screens user-written text (comments, post bodies) before it
// is stored. Links are allowed since posts carry repository and demo URLs.
type ContentFilter struct {
	bannedWordRegexps   []*regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	allCapsPattern      *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps: make([]*regexp.Regexp, 0, len(BannedWords)),
	}
	for _, word := range BannedWords {
		f.bannedWordRegexps = append(f.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	f.repeatedCharPattern = regexp.MustCompile(`(?i)(a{5,}|b{5,}|c{5,}|d{5,}|e{5,}|f{5,}|g{5,}|h{5,}|i{5,}|j{5,}|k{5,}|l{5,}|m{5,}|n{5,}|o{5,}|p{5,}|q{5,}|r{5,}|s{5,}|t{5,}|u{5,}|v{5,}|w{5,}|x{5,}|y{5,}|z{5,}|!{5,}|\?{5,})`)
	f.allCapsPattern = regexp.MustCompile(`\b[A-Z]{6,}\b`)
	return f
}

// Check returns "" when text is acceptable, otherwise a rejection reason.
func (f *ContentFilter) Check(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return "inappropriate_language"
		}
	}
	if f.repeatedCharPattern.MatchString(text) {
		return "spam_detected"
	}
	if len(f.allCapsPattern.FindAllString(text, -1)) > 2 {
		return "excessive_caps"
	}
	return ""
}

// Screen wraps ErrContentRejected with a user-facing message.
func (f *ContentFilter) Screen(text string) error {
	if reason := f.Check(text); reason != "" {
		return fmt.Errorf("%w: %s", ErrContentRejected, RejectionMessage(reason))
	}
	return nil
}

func RejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language": "Your text contains inappropriate language.",
		"spam_detected":          "Your text appears to be spam.",
		"excessive_caps":         "Please avoid using excessive capital letters.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your text does not meet our content guidelines."
}
