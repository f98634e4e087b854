package auth

import (
	"html/template"
	"strings"
)

var verificationTmpl = template.Must(template.New("verify_email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Verify your email</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.5; color: #222;">
	<h2>Confirm your email address</h2>
	<p>Thanks for signing up. Open the link below to finish setting up your account:</p>
	<p><a href="{{.URL}}">Verify email</a></p>
	<p style="word-break: break-all; color: #666;">{{.URL}}</p>
	<p>The link expires in 24 hours. If you did not create an account you can ignore this message.</p>
</body>
</html>`))

func renderVerificationHTML(url string) string {
	var b strings.Builder
	if err := verificationTmpl.Execute(&b, struct{ URL string }{URL: url}); err != nil {
		// Fall back to the plain link; the text part still carries it.
		return url
	}
	return b.String()
}
