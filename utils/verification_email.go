package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// SendVerificationEmail delivers the 6-digit verification code for a booking.
// When SMTP credentials are not configured the mail is mock-logged instead,
// so local environments work without a mail server.
func SendVerificationEmail(recipientEmail, code, language, bookingDate string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := os.Getenv("SMTP_FROM_NAME")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] verification code to:%s date:%s code:%s", recipientEmail, bookingDate, code)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	code = safe(code)
	bookingDate = safe(bookingDate)

	var subject, intro, dateLabel, outro string
	if language == "sk" {
		subject = "Overovací kód pre vašu rezerváciu"
		intro = "Na dokončenie rezervácie zadajte tento overovací kód:"
		dateLabel = "Dátum pobytu"
		outro = "Ak ste o rezerváciu nežiadali, tento email môžete ignorovať."
	} else {
		subject = "Verification code for your booking"
		intro = "Enter this verification code to complete your booking:"
		dateLabel = "Stay date"
		outro = "If you did not request this booking, you can ignore this email."
	}

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	to := []string{recipientEmail}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	boundary := "----=_VERIFICATION_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf("%s\n\n%s\n\n%s: %s\n\n%s\n", intro, code, dateLabel, bookingDate, outro)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.code { font-size:32px; letter-spacing:8px; font-family:monospace; text-align:center; margin:16px 0; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <p>%s</p>
    <div class="code">%s</div>
    <p>%s: <strong>%s</strong></p>
    <p>%s</p>
  </div>
</div>
</body>
</html>`,
		subject, intro, code, dateLabel, bookingDate, outro,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipientEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("Failed to send verification email to %s: %v", recipientEmail, err)
		return err
	}

	log.Printf("Verification email sent to %s", recipientEmail)
	return nil
}
