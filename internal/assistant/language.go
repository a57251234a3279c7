package assistant

// Language selects which of the two supported languages the receptionist
// speaks. It drives the system prompt, every canned reply, and whether the
// final reply goes through Arabic localization.
type Language string

const (
	LanguageArabic  Language = "Arabic"
	LanguageEnglish Language = "English"
)

// ParseLanguage validates a caller-supplied language name.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LanguageArabic:
		return LanguageArabic, true
	case LanguageEnglish:
		return LanguageEnglish, true
	default:
		return "", false
	}
}
