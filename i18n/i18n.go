// Package i18n holds the user-facing message tables for the booking flow.
// Two languages, loaded once at process start; lookups fall back to English
// and finally to the key itself so a missing entry never panics.
package i18n

const DefaultLanguage = "sk"

var messages = map[string]map[string]string{
	"sk": {
		"error.required":          "Toto pole je povinné",
		"error.invalidEmail":      "Neplatná emailová adresa",
		"error.invalidGuests":     "Počet hostí musí byť od 1 do 6",
		"error.invalidDate":       "Neplatný dátum",
		"error.selectDateFirst":   "Najprv vyberte dátum",
		"error.dateUnavailable":   "Vybraný dátum už nie je dostupný. Vyberte iný dátum.",
		"error.submitFailed":      "Chyba pri odosielaní rezervácie. Skúste to znovu.",
		"error.invalidCode":       "Neplatný overovací kód",
		"error.resendCooldown":    "Nový kód môžete poslať o chvíľu",
		"error.bookingNotFound":   "Rezervácia sa nenašla. Začnite odznova.",
		"error.sessionNotFound":   "Relácia sa nenašla alebo vypršala",
		"error.wrongState":        "Táto akcia nie je v aktuálnom kroku dostupná",
		"error.availabilityFetch": "Nepodarilo sa načítať dostupnosť. Skúste to znovu.",
		"error.internal":          "Nastala interná chyba. Skúste to znovu.",
		"bookingSubmitted":        "Rezervácia bola odoslaná! Čoskoro vás budeme kontaktovať.",
		"verificationSent":        "Poslali sme vám overovací kód na",
		"bookingConfirmed":        "Rezervácia potvrdená",
	},
	"en": {
		"error.required":          "This field is required",
		"error.invalidEmail":      "Invalid email address",
		"error.invalidGuests":     "Number of guests must be between 1 and 6",
		"error.invalidDate":       "Invalid date",
		"error.selectDateFirst":   "Select a date first",
		"error.dateUnavailable":   "The selected date is no longer available. Please pick another date.",
		"error.submitFailed":      "Error submitting booking. Please try again.",
		"error.invalidCode":       "Invalid verification code",
		"error.resendCooldown":    "You can resend the code in a moment",
		"error.bookingNotFound":   "Booking not found. Please start over.",
		"error.sessionNotFound":   "Session not found or expired",
		"error.wrongState":        "This action is not available at the current step",
		"error.availabilityFetch": "Could not load availability. Please try again.",
		"error.internal":          "An internal error occurred. Please try again.",
		"bookingSubmitted":        "Booking request submitted! We will contact you soon.",
		"verificationSent":        "We sent a verification code to",
		"bookingConfirmed":        "Booking confirmed",
	},
}

// T resolves a message for the given language tag.
func T(lang, key string) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return key
}

// Supported reports whether lang has its own message table.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}
