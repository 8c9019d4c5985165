package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

const welcomeTemplate = `
<html>
<body>
<p>{{.ProjectName}} - New account</p>
<p>An account was created for <strong>{{.Email}}</strong>.</p>
<p>Your password is: <strong>{{.Password}}</strong></p>
<p><a href="{{.Link}}">Log in</a></p>
</body>
</html>`

const resetTemplate = `
<html>
<body>
<p>{{.ProjectName}} - Password recovery</p>
<p>We received a request to reset the password for <strong>{{.Email}}</strong>.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>The link is valid for {{.ValidHours}} hours. If you did not request a
password reset, you can ignore this message.</p>
</body>
</html>`

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(welcomeTemplate))
	resetTmpl   = template.Must(template.New("reset").Parse(resetTemplate))
)

// NewAccountMessage builds the welcome mail sent when an administrator
// creates an account.
func NewAccountMessage(projectName, serverHost, email, password string) (Message, error) {
	var body strings.Builder
	err := welcomeTmpl.Execute(&body, map[string]any{
		"ProjectName": projectName,
		"Email":       email,
		"Password":    password,
		"Link":        serverHost,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      email,
		Subject: fmt.Sprintf("%s - New account for user %s", projectName, email),
		HTML:    body.String(),
	}, nil
}

// ResetPasswordMessage builds the recovery mail carrying the reset token.
func ResetPasswordMessage(projectName, serverHost, email, token string, ttl time.Duration) (Message, error) {
	var body strings.Builder
	err := resetTmpl.Execute(&body, map[string]any{
		"ProjectName": projectName,
		"Email":       email,
		"Link":        fmt.Sprintf("%s/reset-password?token=%s", serverHost, token),
		"ValidHours":  int(ttl.Hours()),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      email,
		Subject: fmt.Sprintf("%s - Password recovery for user %s", projectName, email),
		HTML:    body.String(),
	}, nil
}
