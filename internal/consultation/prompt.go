package consultation

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

const truncatedMarker = " …[truncated]"

var systemPrompts = map[Language]string{
	English: "You are a helpful medical assistant. Provide brief, clear, and accurate advice (2-3 sentences). For serious symptoms, recommend consulting a doctor. ",
	Hindi:   "आप एक सहायक चिकित्सा सहायक हैं। संक्षिप्त, स्पष्ट और सटीक सलाह दें (2-3 वाक्य)। गंभीर लक्षणों के लिए डॉक्टर से परामर्श की सलाह दें। ",
}

var userPrompts = map[Language]struct{ prefix, suffix string }{
	English: {"Symptoms: ", "\n\nProvide brief advice (maximum 3 sentences). If serious, recommend seeing a doctor."},
	Hindi:   {"लक्षण: ", "\n\nकृपया संक्षिप्त सलाह दें (अधिकतम 3 वाक्य)। यदि गंभीर हो तो डॉक्टर से मिलने की सलाह दें।"},
}

// BuildPrompts returns the system and user messages for one request.
// maxHistory bounds the serialized history in bytes; zero or less means no bound.
func BuildPrompts(req Request, maxHistory int) (system, user string) {
	lang := req.Language
	if !lang.Valid() {
		lang = English
	}

	system = systemPrompts[lang]
	if h := serializeHistory(req.PatientHistory, maxHistory); h != "" {
		system += "\n\nPatient History: " + h
	}

	up := userPrompts[lang]
	user = up.prefix + req.Query + up.suffix
	return system, user
}

// HasHistory reports whether raw carries a history record. JSON null counts as absent.
func HasHistory(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func serializeHistory(raw json.RawMessage, maxBytes int) string {
	if !HasHistory(raw) {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	out := buf.String()
	if maxBytes <= 0 || len(out) <= maxBytes {
		return out
	}

	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return out[:cut] + truncatedMarker
}
