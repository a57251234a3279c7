// Package arabic renders assistant replies for Arabic-mode output: Latin
// digits and time notation become Arabic script and a fixed vocabulary of
// clinic nouns is swapped for its Arabic equivalents.
package arabic

import (
	"regexp"
	"strings"
)

const timeExpr = `\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)`

var (
	// Bracketed/bulleted ranges go first so the later passes never see them
	// again: once converted, nothing here matches Latin digits or AM/PM.
	bulletRangePattern = regexp.MustCompile(`-\s+\*\*(` + timeExpr + `?)\s*-\s*(` + timeExpr + `?)\*\*`)
	timeRangePattern   = regexp.MustCompile(`(` + timeExpr + `?)\s*-\s*(` + timeExpr + `?)`)
	clockPattern       = regexp.MustCompile(timeExpr)
	digitRunPattern    = regexp.MustCompile(`\d+\.?\d*`)

	digitReplacer = strings.NewReplacer(
		"0", "٠",
		"1", "١",
		"2", "٢",
		"3", "٣",
		"4", "٤",
		"5", "٥",
		"6", "٦",
		"7", "٧",
		"8", "٨",
		"9", "٩",
	)

	meridiemReplacer = strings.NewReplacer(
		"AM", "ص",
		"PM", "م",
		"am", "ص",
		"pm", "م",
	)

	// Ordered so that plural forms win over their prefixes.
	nouns = []string{
		"doctor", "طبيب",
		"appointment", "موعد",
		"clinic", "عيادة",
		"patient", "مريض",
		"time", "وقت",
		"date", "تاريخ",
		"phone", "هاتف",
		"number", "رقم",
		"name", "اسم",
		"hour", "ساعة",
		"minute", "دقيقة",
		"morning", "صباح",
		"evening", "مساء",
		"afternoon", "بعد الظهر",
		"available", "متاح",
		"slots", "مواعيد",
		"slot", "موعد",
		"today", "اليوم",
		"tomorrow", "غداً",
		"yesterday", "أمس",
	}

	nounReplacer = newNounReplacer()
)

func newNounReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(nouns)*2)
	for i := 0; i < len(nouns); i += 2 {
		eng, arb := nouns[i], nouns[i+1]
		pairs = append(pairs, eng, arb)
		pairs = append(pairs, strings.ToUpper(eng[:1])+eng[1:], arb)
	}
	return strings.NewReplacer(pairs...)
}

// Localize converts a reply to Arabic-script numerals, time notation, and
// domain nouns. Applying it to its own output is a no-op: converted tokens
// no longer match any of the Latin-script patterns.
func Localize(text string) string {
	text = bulletRangePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := bulletRangePattern.FindStringSubmatch(match)
		return "- **" + convertClock(groups[1]) + " - " + convertClock(groups[2]) + "**"
	})

	text = timeRangePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := timeRangePattern.FindStringSubmatch(match)
		return convertClock(groups[1]) + " - " + convertClock(groups[2])
	})

	text = clockPattern.ReplaceAllStringFunc(text, convertClock)
	text = meridiemReplacer.Replace(text)

	text = digitRunPattern.ReplaceAllStringFunc(text, digitReplacer.Replace)

	return nounReplacer.Replace(text)
}

func convertClock(clock string) string {
	return digitReplacer.Replace(meridiemReplacer.Replace(clock))
}
