// Package fileinfo infers recording metadata from user-supplied filenames.
// Voice notes arrive with whatever names the recording app produced, so the
// parser tries several patterns in decreasing order of specificity.
package fileinfo

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Source marks where a recorded-at timestamp came from.
type Source string

const (
	SourceFilename Source = "filename"
	SourceModTime  Source = "mtime"
)

var (
	// 2024-01-15, 2024_01_15, 2024.01.15
	separatedDateRe = regexp.MustCompile(`(\d{4})[-_.](\d{2})[-_.](\d{2})`)

	// 20240115 with no adjacent digits
	compactDateRe = regexp.MustCompile(`(?:^|[^0-9])(\d{8})(?:[^0-9]|$)`)

	monthAlt = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

	// Jan 15, 2024 / January 15 2024
	monthFirstRe = regexp.MustCompile(`(?i)\b(` + monthAlt + `)[,. ]+(\d{1,2})[,. ]+(\d{4})\b`)
	// 15 Jan 2024 / 15, January 2024
	dayFirstRe = regexp.MustCompile(`(?i)\b(\d{1,2})[,. ]+(` + monthAlt + `)[,. ]+(\d{4})\b`)

	leadingSeqRe  = regexp.MustCompile(`^(\d+)[-_ ]`)
	partSeqRe     = regexp.MustCompile(`(?i)part[-_ ]?(\d+)`)
	trailingSeqRe = regexp.MustCompile(`[-_ ](\d+)$`)
	allDigitsRe   = regexp.MustCompile(`^\d+$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// calendarDate builds a date and rejects values time.Date would normalize,
// e.g. month 13 or February 30.
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate extracts a best-guess recording date from a filename. Patterns
// are tried in order: separated numeric, compact numeric, month name. A
// structurally matching but calendar-invalid candidate falls through to the
// next pattern. The second return is false when nothing matched.
func ParseDate(filename string) (time.Time, bool) {
	name := stem(filename)

	for _, m := range separatedDateRe.FindAllStringSubmatch(name, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if year <= 2000 {
			continue
		}
		if t, ok := calendarDate(year, time.Month(month), day); ok {
			return t, true
		}
	}

	for _, m := range compactDateRe.FindAllStringSubmatch(name, -1) {
		digits := m[1]
		year, _ := strconv.Atoi(digits[:4])
		month, _ := strconv.Atoi(digits[4:6])
		day, _ := strconv.Atoi(digits[6:8])
		if year <= 2000 || month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		if t, ok := calendarDate(year, time.Month(month), day); ok {
			return t, true
		}
	}

	if m := monthFirstRe.FindStringSubmatch(name); m != nil {
		month := monthsByPrefix[strings.ToLower(m[1][:3])]
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t, ok := calendarDate(year, month, day); ok {
			return t, true
		}
	}

	if m := dayFirstRe.FindStringSubmatch(name); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthsByPrefix[strings.ToLower(m[2][:3])]
		year, _ := strconv.Atoi(m[3])
		if t, ok := calendarDate(year, month, day); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseSequence extracts an ordinal sequence number from a filename. It is
// only ever used as an ordering tie-break, never as a primary key. Patterns
// in order: leading number with separator, "part<N>", trailing number with
// separator, all-digits stem.
func ParseSequence(filename string) (int, bool) {
	name := stem(filename)

	if m := leadingSeqRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if m := partSeqRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if m := trailingSeqRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if allDigitsRe.MatchString(name) {
		if n, err := strconv.Atoi(name); err == nil {
			return n, true
		}
	}

	return 0, false
}

// RecordedAt returns the filename-derived date when one is present and the
// supplied modification time otherwise. Total: there is no error path.
func RecordedAt(originalName string, modTime time.Time) (time.Time, Source) {
	if t, ok := ParseDate(originalName); ok {
		return t, SourceFilename
	}
	return modTime, SourceModTime
}
