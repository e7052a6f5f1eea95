package mailer

import "errors"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // welcome, password_changed, account_deleted
	Data     map[string]any `json:"data,omitempty"`
}

func (j EmailJob) Validate() error {
	if j.To == "" {
		return errors.New("email job: missing recipient")
	}
	if j.Template == "" && (j.Subject == "" || (j.Text == "" && j.HTML == "")) {
		return errors.New("email job: needs a template or a subject and body")
	}
	return nil
}
