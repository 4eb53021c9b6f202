package filters

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
)

// InvalidDate is returned by the date filters for input that is not a date.
const InvalidDate = "Invalid DateTime"

// isoLayouts are tried in order when parsing an ISO-8601 string.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

type mediumStyle func(t time.Time) string

var (
	frenchMonths  = [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}
	spanishMonths = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}
)

// supportedLocales and mediumStyles are parallel; the first entry is the
// fallback for unmatched locales.
var (
	supportedLocales = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Japanese,
	}
	mediumStyles = []mediumStyle{
		func(t time.Time) string { return t.Format("Jan 2, 2006") },
		func(t time.Time) string { return t.Format("2 Jan 2006") },
		func(t time.Time) string { return t.Format("02.01.2006") },
		func(t time.Time) string {
			return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
		},
		func(t time.Time) string {
			return fmt.Sprintf("%d %s %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
		},
		func(t time.Time) string { return t.Format("2006/01/02") },
	}
	localeMatcher = language.NewMatcher(supportedLocales)
)

// ProcessLocale reports the locale of the running process, read once from
// LC_ALL, LC_TIME and LANG. An unset, C or POSIX locale is en-US.
var ProcessLocale = sync.OnceValue(func() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return ParseLocale(v)
		}
	}
	return language.AmericanEnglish
})

// ParseLocale turns a POSIX locale name ("de_DE.UTF-8") or a BCP 47 tag into
// a language tag. Unparseable names fall back to en-US.
func ParseLocale(name string) language.Tag {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i != -1 {
		name = name[:i]
	}
	if name == "" || name == "C" || name == "POSIX" {
		return language.AmericanEnglish
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// PostDate formats a date value in the medium date style of the process
// locale, e.g. "Jan 5, 2024".
func PostDate(value any) string {
	return FormatDate(value, ProcessLocale())
}

// FormatDate formats a date value in the medium date style of locale. The
// value is a time.Time, a *time.Time or an ISO-8601 string; anything else
// yields InvalidDate.
func FormatDate(value any, locale language.Tag) string {
	iso, ok := toISO(value)
	if !ok {
		return InvalidDate
	}
	t, err := ParseISO(iso)
	if err != nil {
		return InvalidDate
	}
	_, idx, _ := localeMatcher.Match(locale)
	return mediumStyles[idx](t)
}

// ParseISO parses an ISO-8601 date or date-time. An explicit offset is kept
// as written; values without one are read as UTC wall-clock time.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised ISO-8601 date %q", s)
}

func toISO(value any) (string, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case *time.Time:
		if v == nil {
			return "", false
		}
		return v.Format(time.RFC3339Nano), true
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
