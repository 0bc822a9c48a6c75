package utils

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

// SendOTPEmail delivers a login OTP to an account's email address. Phone is
// the primary channel; email is best-effort for accounts that registered one.
func SendOTPEmail(to, otp string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your StyleKart Login OTP")

	body := fmt.Sprintf(`
		<h2>StyleKart Login</h2>
		<p>Use the following OTP to sign in:</p>
		<h1 style="color: #4CAF50; font-size: 32px; letter-spacing: 5px;">%s</h1>
		<p>This OTP expires shortly. If you didn't request it, ignore this email.</p>
	`, otp)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, 587, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
