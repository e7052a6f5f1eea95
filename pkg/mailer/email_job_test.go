package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailJob_Validate(t *testing.T) {
	assert.NoError(t, EmailJob{To: "a@example.com", Template: "welcome"}.Validate())
	assert.NoError(t, EmailJob{To: "a@example.com", Subject: "Hi", Text: "body"}.Validate())

	assert.Error(t, EmailJob{Template: "welcome"}.Validate())
	assert.Error(t, EmailJob{To: "a@example.com", Subject: "Hi"}.Validate())
	assert.Error(t, EmailJob{To: "a@example.com"}.Validate())
}
