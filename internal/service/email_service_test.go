package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailServiceDisabled(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "ap-southeast-2", "", "", "http://localhost", false)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendWelcomeEmail(context.Background(), "a@example.com", "A"))

	var missing *EmailService
	assert.False(t, missing.IsEnabled())
}

func TestEmailRendering(t *testing.T) {
	ses := &fakeSES{}
	svc := newTestEmail(ses)

	require.NoError(t, svc.SendBeltEmail(context.Background(), "mum@example.com", "Mum", "<Kid>", "Green"))
	require.Len(t, ses.sent, 1)

	sent := ses.sent[0]
	assert.Equal(t, "Alloneword <noreply@alloneword.test>", *sent.FromEmailAddress)
	assert.Empty(t, sent.ReplyToAddresses)

	html := *sent.Content.Simple.Body.Html.Data
	assert.Contains(t, html, "&lt;Kid&gt;", "names are escaped in the html body")
	assert.Contains(t, html, "http://alloneword.test/parent")

	text := *sent.Content.Simple.Body.Text.Data
	assert.Contains(t, text, "<Kid> just reached the Green belt")
	assert.Contains(t, text, "See Progress: http://alloneword.test/parent")
}
