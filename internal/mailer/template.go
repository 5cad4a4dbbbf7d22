package mailer

import (
	"bytes"
	"html/template"
)

// WelcomeSubject is the fixed subject line for the welcome mail.
const WelcomeSubject = "Welcome to North Fiber!"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Hi {{.CustomerName}},</p>
  <p>
    Welcome to North Fiber! Your service order is in our system and our team
    is getting your fiber installation under way.
  </p>
  <p>
    Here is what happens next: we will complete a site survey at your
    address, bury the fiber drop, and then schedule your in-home
    installation. We will reach out before each visit.
  </p>
  <p>
    Questions in the meantime? Reply to this email or call the office and
    we will be glad to help.
  </p>
  <p>The North Fiber Team</p>
</body>
</html>
`))

type welcomeData struct {
	CustomerName string
}

// RenderWelcome fills the fixed welcome template. The customer name is the
// only variable; everything else is boilerplate the office approved.
func RenderWelcome(customerName string) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, welcomeData{CustomerName: customerName}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
