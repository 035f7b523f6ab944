package fields

import (
	"regexp"
	"strings"
)

var (
	locationPattern = regexp.MustCompile(`(?i)(?:📍|location\s*[:：]|based\s+in\s*[:：]?|from\s*[:：]|آدرس\s*[:：])\s*(.+)`)
	contactPattern  = regexp.MustCompile(`(?i)(?:📞|📱|☎️?|call\s*[:：]|whatsapp\s*[:：]|telegram\s*[:：]|(?:شماره\s+)?تماس\s*[:：]|تلفن\s*[:：])\s*(.+)`)
	phoneNumber     = regexp.MustCompile(`(?:(?:\+98|\b0098)[\s-]?|\b0)9\d{2}[\s-]?\d{3}[\s-]?\d{4}\b|\b9\d{9}\b`)
)

// Location returns the first location line's value.
func Location(lines []string) string {
	return firstCapture(lines, locationPattern)
}

// Contact returns the first contact handle or phone number.
func Contact(lines []string) string {
	if c := firstCapture(lines, contactPattern); c != "" {
		return c
	}
	for _, l := range lines {
		if m := phoneNumber.FindString(l); m != "" {
			return m
		}
	}
	return ""
}

func firstCapture(lines []string, re *regexp.Regexp) string {
	for _, l := range lines {
		if m := re.FindStringSubmatch(l); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}
