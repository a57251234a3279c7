// Package extract pulls structured values out of free-form patient text.
// Every function is best-effort: a false second return means the text did
// not contain the value, never that something went wrong.
package extract

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDatePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDatePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	dashDatePattern  = regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`)
	shortSlashDate   = regexp.MustCompile(`\d{1,2}/\d{1,2}`)
	shortDashDate    = regexp.MustCompile(`\d{1,2}-\d{1,2}`)

	clockPattern = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(?:AM|PM)?`)

	appointmentIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)appointment\s*(?:id|number)?\s*[:#]?\s*(\d+)`),
		regexp.MustCompile(`(?i)appo?[_-]?id\s*[:#]?\s*(\d+)`),
		regexp.MustCompile(`موعد\s*(?:رقم)?\s*[:#]?\s*(\d+)`),
		regexp.MustCompile(`(\d{6,})`),
	}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{1,4}[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\d{10,15}`),
		regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
	}
	phoneJunk = regexp.MustCompile(`[^\d+]`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	maleWords   = []string{"male", "man", "boy", "gentleman", "ذكر", "رجل"}
	femaleWords = []string{"female", "woman", "girl", "lady", "أنثى", "امرأة"}
)

// Date finds a date in text and returns it as YYYY-MM-DD. The words
// today/tomorrow (and their Arabic forms) resolve relative to now.
func Date(text string, now time.Time) (string, bool) {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "today") || strings.Contains(lower, "اليوم") {
		return now.Format("2006-01-02"), true
	}
	if strings.Contains(lower, "tomorrow") || strings.Contains(lower, "غدًا") || strings.Contains(lower, "غدا") {
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	}

	if m := isoDatePattern.FindString(text); m != "" {
		if _, err := time.Parse("2006-01-02", m); err == nil {
			return m, true
		}
	}
	if m := slashDatePattern.FindString(text); m != "" {
		if d, err := time.Parse("1/2/2006", m); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	if m := dashDatePattern.FindString(text); m != "" {
		if d, err := time.Parse("1-2-2006", m); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	// month/day without a year resolves to the current year
	if m := shortSlashDate.FindString(text); m != "" {
		if d, err := time.Parse("2006/1/2", now.Format("2006")+"/"+m); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	if m := shortDashDate.FindString(text); m != "" {
		if d, err := time.Parse("2006-1-2", now.Format("2006")+"-"+m); err == nil {
			return d.Format("2006-01-02"), true
		}
	}

	return "", false
}

// TimeSlot finds a clock time in text and widens it to the backend's
// fifteen minute slot id format, HH:MM:00-HH:MM:00.
func TimeSlot(text string) (string, bool) {
	match := clockPattern.FindString(text)
	if match == "" {
		return "", false
	}

	normalized := strings.ToUpper(strings.Join(strings.Fields(match), " "))
	var parsed time.Time
	var err error
	if strings.Contains(normalized, "AM") || strings.Contains(normalized, "PM") {
		parsed, err = time.Parse("3:04 PM", normalized)
		if err != nil {
			parsed, err = time.Parse("3:04PM", normalized)
		}
	} else {
		parsed, err = time.Parse("15:04", normalized)
	}
	if err != nil {
		return "", false
	}

	start := parsed.Format("15:04") + ":00"
	end := parsed.Add(15*time.Minute).Format("15:04") + ":00"
	return start + "-" + end, true
}

// AppointmentID finds an appointment id: an explicitly labelled number in
// English or Arabic, or failing that any run of six or more digits.
func AppointmentID(text string) (string, bool) {
	for _, pattern := range appointmentIDPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Gender maps gendered words in either language onto the backend's
// Male/Female values.
func Gender(text string) (string, bool) {
	lower := strings.ToLower(text)
	// female first: "male" and "man" are substrings of "female" and "woman"
	for _, word := range femaleWords {
		if strings.Contains(lower, word) {
			return "Female", true
		}
	}
	for _, word := range maleWords {
		if strings.Contains(lower, word) {
			return "Male", true
		}
	}
	return "", false
}

// Phone finds a phone number and strips separators, keeping a leading plus.
func Phone(text string) (string, bool) {
	for _, pattern := range phonePatterns {
		if m := pattern.FindString(text); m != "" {
			return phoneJunk.ReplaceAllString(m, ""), true
		}
	}
	return "", false
}

// Email finds an email address.
func Email(text string) (string, bool) {
	if m := emailPattern.FindString(text); m != "" {
		return m, true
	}
	return "", false
}
