// Package timeparse turns the date strings found in feeds, APIs and scraped
// pages into timestamps.
package timeparse

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// zonelessRFC2822 covers RSS dates that omit the zone; net/mail rejects them.
var zonelessRFC2822 = []string{
	"Mon, 2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04",
	"2 Jan 2006 15:04",
}

// usZones are the RFC 822 zone names; net/mail reads them as +0000.
var usZones = map[string]string{
	"EST": "-0500", "EDT": "-0400",
	"CST": "-0600", "CDT": "-0500",
	"MST": "-0700", "MDT": "-0600",
	"PST": "-0800", "PDT": "-0700",
}

// layouts are tried in order after the RFC 2822 attempt.
var layouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z07:00",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006/01/02 15:04",
}

var (
	reDate  = regexp.MustCompile(`(\d{4})[年\-/](\d{1,2})[月\-/](\d{1,2})`)
	reClock = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Parser resolves raw time strings. Location is assumed for inputs that carry
// no offset; the zero value assumes UTC.
type Parser struct {
	Location *time.Location
}

// Parse uses the zero Parser.
func Parse(raw string) (time.Time, bool) {
	return Parser{}.Parse(raw)
}

// Parse returns the timestamp and true, or the zero time and false when no
// strategy recognises the input.
func (p Parser) Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	loc := p.loc()

	if t, ok := parseRFC2822(s, loc); ok {
		return t, true
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return p.fromFragments(s, loc)
}

func parseRFC2822(s string, loc *time.Location) (time.Time, bool) {
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		if off, ok := usZones[strings.ToUpper(s[i+1:])]; ok {
			s = s[:i+1] + off
		}
	}
	if t, err := mail.ParseDate(s); err == nil {
		return t, true
	}
	for _, layout := range zonelessRFC2822 {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p Parser) fromFragments(s string, loc *time.Location) (time.Time, bool) {
	m := reDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if !validDate(year, month, day) {
		return time.Time{}, false
	}

	// 时刻越界时整条视为未知，不保留日期
	hour, minute := 0, 0
	if hm := reClock.FindStringSubmatch(s); hm != nil {
		hour, _ = strconv.Atoi(hm[1])
		minute, _ = strconv.Atoi(hm[2])
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), true
}

func (p Parser) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// validDate rejects dates time.Date would silently normalise, e.g. Feb 30.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}
