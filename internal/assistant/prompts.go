package assistant

import (
	"fmt"
	"strings"

	"github.com/farabiclinic/ai-receptionist/internal/clinicapi"
)

const systemPromptArabic = `أنت موظف استقبال في عيادة طبية ناطقة باللغة العربية. يجب أن تتحدث باللغة العربية دائمًا. كن مفيدًا وكفؤًا.

عند الرد على طلبات التحقق من توفر المواعيد:
1. إذا كان الطبيب متاحًا، اذكر التاريخ وعدد المواعيد المتاحة وأوقاتها
2. إذا لم يكن الطبيب متاحًا، اذكر التاريخ واقترح تواريخ بديلة إذا كانت متاحة
3. لو تم اختيار الطبيب دون تحديد لعياده يرجي عرض جميع العيادات للاختيار منها
عند حجز أو إلغاء المواعيد، أو تسجيل المرضى الجدد، تأكد من جمع جميع المعلومات الضرورية بما في ذلك تفاصيل المريض، معرف الموعد، الطبيب، التاريخ، والوقت. قبل حجز موعد، تحقق دائمًا مما إذا كان المريض لديه حساب موجود باستخدام رقم هاتفه المحمول.`

const systemPromptEnglish = `You are a receptionist at a medical clinic. Always speak in the appropriate language. Be helpful and efficient.

When responding to availability check requests:
1. If the doctor is available, mention the date, number of available slots, and their times
2. If the doctor is not available, mention the date and suggest alternative dates if available
3. if he choose doctor without clinic show clinics and ask him to choose
When booking or canceling appointments, or registering new patients, make sure to collect all necessary information including patient details, appointment ID, doctor, date, and time. Before booking an appointment, always check if the patient has an existing account using their mobile number.`

// systemPrompt returns the system instruction for the active language.
func systemPrompt(lang Language) string {
	if lang == LanguageArabic {
		return systemPromptArabic
	}
	return systemPromptEnglish
}

// languageDirective wraps an inbound message with an explicit instruction to
// answer in the active language before it joins the transcript.
func languageDirective(lang Language, text string) string {
	if lang == LanguageArabic {
		return fmt.Sprintf("يرجى الرد باللغة العربية. المستخدم قال: %s", text)
	}
	return fmt.Sprintf("Please respond in English. The user said: %s", text)
}

// numberedList renders a 1-based list of clinics or doctors for selection
// prompts.
func numberedList(entries []clinicapi.NamedCode) string {
	var b strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, entry.Name)
	}
	return b.String()
}

func clinicListPrompt(lang Language, clinics []clinicapi.NamedCode) string {
	list := numberedList(clinics)
	if lang == LanguageArabic {
		return fmt.Sprintf("إليك قائمة العيادات المتاحة:\n%s\nيرجى اختيار رقم العيادة التي تريدها.", list)
	}
	return fmt.Sprintf("Here are the available clinics:\n%s\nPlease choose the clinic number you want.", list)
}

func noClinicsMessage(lang Language) string {
	if lang == LanguageArabic {
		return "عذرًا، لا يمكنني العثور على العيادات المتاحة في الوقت الحالي."
	}
	return "Sorry, I can't find available clinics at the moment."
}

func doctorListPrompt(lang Language, clinicName string, doctors []clinicapi.NamedCode) string {
	list := numberedList(doctors)
	if lang == LanguageArabic {
		return fmt.Sprintf("تم اختيار عيادة: %s\n\nإليك قائمة الأطباء المتاحين:\n%s\nيرجى اختيار رقم الطبيب الذي تريد الحجز معه.", clinicName, list)
	}
	return fmt.Sprintf("Selected clinic: %s\n\nHere are the available doctors:\n%s\nPlease choose the doctor number you want to book with.", clinicName, list)
}

func noDoctorsMessage(lang Language, clinicName string) string {
	if lang == LanguageArabic {
		return fmt.Sprintf("عذرًا، لا يمكنني العثور على أطباء في عيادة %s.", clinicName)
	}
	return fmt.Sprintf("Sorry, I can't find doctors in %s clinic.", clinicName)
}

func doctorChosenMessage(lang Language, doctorName string) string {
	if lang == LanguageArabic {
		return fmt.Sprintf("تم اختيار الطبيب: %s\n\nالآن يمكنني مساعدتك في الحجز مع الطبيب %s. يرجى تقديم تاريخ الموعد المطلوب.", doctorName, doctorName)
	}
	return fmt.Sprintf("Selected doctor: %s\n\nNow I can help you book with Dr. %s. Please provide the desired appointment date.", doctorName, doctorName)
}

func choiceOutOfRangeMessage(lang Language) string {
	if lang == LanguageArabic {
		return "رقم غير صحيح. يرجى اختيار رقم من القائمة."
	}
	return "Invalid number. Please choose a number from the list."
}

func choiceNotANumberMessage(lang Language) string {
	if lang == LanguageArabic {
		return "يرجى إدخال رقم صحيح."
	}
	return "Please enter a valid number."
}

// UnavailableReply is the canned answer transports send when the language
// model could not be reached and no reply was produced.
func UnavailableReply(lang Language) string {
	if lang == LanguageArabic {
		return "عذرًا، لا أستطيع معالجة طلبك في الوقت الحالي. يرجى المحاولة مرة أخرى بعد قليل."
	}
	return "Sorry, I can't process your request right now. Please try again in a moment."
}
