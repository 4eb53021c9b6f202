package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatDate_ISOStrings(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"UTC instant", "2024-01-05T00:00:00Z", "Jan 5, 2024"},
		{"calendar date", "2024-01-05", "Jan 5, 2024"},
		{"offset kept as written", "2024-01-05T23:30:00-08:00", "Jan 5, 2024"},
		{"fractional seconds", "2024-03-10T12:00:00.123Z", "Mar 10, 2024"},
		{"no offset", "2023-12-31T18:45:00", "Dec 31, 2023"},
		{"year and month", "2022-07", "Jul 1, 2022"},
		{"surrounding whitespace", "  2024-02-29 ", "Feb 29, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.value, language.AmericanEnglish))
		})
	}
}

func TestFormatDate_NativeInstantMatchesISOString(t *testing.T) {
	native := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.Local)

	assert.Equal(t, FormatDate("2024-01-05", language.AmericanEnglish), FormatDate(native, language.AmericanEnglish))
	assert.Equal(t, FormatDate("2024-01-05", language.AmericanEnglish), FormatDate(&native, language.AmericanEnglish))
	assert.Equal(t, PostDate("2024-01-05"), PostDate(native))
}

func TestFormatDate_Invalid(t *testing.T) {
	var nilTime *time.Time
	for _, v := range []any{"not a date", "2024-13-45", "", nil, 42, nilTime} {
		assert.Equal(t, InvalidDate, FormatDate(v, language.AmericanEnglish), "value=%v", v)
	}
}

func TestFormatDate_Locales(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en-US", "Jan 5, 2024"},
		{"en_GB.UTF-8", "5 Jan 2024"},
		{"de_DE.UTF-8", "05.01.2024"},
		{"fr-FR", "5 janv. 2024"},
		{"es", "5 ene 2024"},
		{"ja_JP", "2024/01/05"},
		{"C", "Jan 5, 2024"},
		{"", "Jan 5, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate("2024-01-05", ParseLocale(tt.locale)))
		})
	}
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, language.AmericanEnglish, ParseLocale("POSIX"))
	assert.Equal(t, language.AmericanEnglish, ParseLocale("!!"))
	assert.Equal(t, language.MustParse("de-DE"), ParseLocale("de_DE.UTF-8@euro"))
}
