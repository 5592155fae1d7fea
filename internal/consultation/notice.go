package consultation

type NoticeKind string

const (
	NoticeValidation  NoticeKind = "validation"
	NoticeRetryLater  NoticeKind = "retry_later"
	NoticeUnavailable NoticeKind = "unavailable"
	NoticeTimeout     NoticeKind = "timeout"
	NoticeError       NoticeKind = "error"
)

// Notice is a localized, user-facing message. Soft notices are expected
// conditions the patient can simply retry after.
type Notice struct {
	Kind        NoticeKind
	Title       string
	Description string
	Soft        bool
}

func (n *Notice) Error() string {
	if n.Description == "" {
		return n.Title
	}
	return n.Title + ": " + n.Description
}

type localized struct{ english, hindi string }

func (l localized) in(lang Language) string {
	if lang == Hindi {
		return l.hindi
	}
	return l.english
}

var (
	textDescribeSymptoms = localized{"Please describe your symptoms", "कृपया अपने लक्षण बताएं"}
	textTryLater         = localized{"Please try again later", "कृपया बाद में पुनः प्रयास करें"}
	textTooMany          = localized{"Too many requests. Please wait a moment.", "बहुत सारे अनुरोध। कृपया थोड़ी देर प्रतीक्षा करें।"}
	textUnavailable      = localized{"Service unavailable", "सेवा अनुपलब्ध"}
	textUnavailableDesc  = localized{
		"The assistant is temporarily unavailable. Please contact support.",
		"सहायक अस्थायी रूप से अनुपलब्ध है। कृपया सहायता से संपर्क करें।",
	}
	textTimedOut     = localized{"Request timed out", "अनुरोध का समय समाप्त हो गया"}
	textTimedOutDesc = localized{
		"The assistant took too long to respond. Please try again.",
		"सहायक ने जवाब देने में बहुत समय लिया। कृपया पुनः प्रयास करें।",
	}
	textError         = localized{"Error", "त्रुटि"}
	textFailedConsult = localized{"Failed to get consultation", "परामर्श प्राप्त करने में विफल"}
	textDisclaimer    = localized{
		"This AI advice is for general information only. For serious symptoms, emergencies, or medical diagnosis, please consult a qualified doctor immediately.",
		"यह एआई सलाह केवल सामान्य जानकारी के लिए है। गंभीर लक्षणों, आपातकालीन स्थितियों या चिकित्सा निदान के लिए तुरंत योग्य चिकित्सक से परामर्श करें।",
	}
)

// Disclaimer is the medical disclaimer shown alongside every consultation.
func Disclaimer(lang Language) string {
	return textDisclaimer.in(lang)
}

func validationNotice(lang Language) *Notice {
	return &Notice{Kind: NoticeValidation, Title: textDescribeSymptoms.in(lang), Soft: true}
}

// noticeFor turns a relay category into the notice a patient sees. detail is
// the raw error text, used only for generic failures.
func noticeFor(lang Language, cat Category, detail string) *Notice {
	switch cat {
	case CategoryRateLimited:
		return &Notice{Kind: NoticeRetryLater, Title: textTryLater.in(lang), Description: textTooMany.in(lang), Soft: true}
	case CategoryUnavailable:
		return &Notice{Kind: NoticeUnavailable, Title: textUnavailable.in(lang), Description: textUnavailableDesc.in(lang), Soft: true}
	case CategoryTimeout:
		return &Notice{Kind: NoticeTimeout, Title: textTimedOut.in(lang), Description: textTimedOutDesc.in(lang), Soft: true}
	default:
		if detail == "" {
			detail = textFailedConsult.in(lang)
		}
		return &Notice{Kind: NoticeError, Title: textError.in(lang), Description: detail}
	}
}
