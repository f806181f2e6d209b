package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. Without a from address the
// service is disabled and every send is a logged no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		slog.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug, appBaseURL: appBaseURL}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	slog.Info("email service enabled", "from", fromEmail, "region", awsRegion)
	if debug {
		slog.Debug("email service config", "from_name", fromName, "base_url", appBaseURL)
	}

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e7d5b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2e7d5b; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>{{.Title}}</h1></div>
		<div class="content">
			{{range .Paragraphs}}<p>{{.}}</p>
			{{end}}{{if .ButtonURL}}<p style="text-align: center;"><a href="{{.ButtonURL}}" class="button">{{.ButtonText}}</a></p>{{end}}
		</div>
		<div class="footer"><p>This is an automated email from Alloneword. Please do not reply.</p></div>
	</div>
</body>
</html>
`))

type emailContent struct {
	Title      string
	Paragraphs []string
	ButtonURL  string
	ButtonText string
}

func (c emailContent) render() (htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	if err := emailLayout.Execute(&buf, c); err != nil {
		return "", "", fmt.Errorf("failed to render email: %w", err)
	}

	var text strings.Builder
	for _, p := range c.Paragraphs {
		text.WriteString(p)
		text.WriteString("\n\n")
	}
	if c.ButtonURL != "" {
		fmt.Fprintf(&text, "%s: %s\n\n", c.ButtonText, c.ButtonURL)
	}
	text.WriteString("---\nThis is an automated email from Alloneword. Please do not reply.\n")

	return buf.String(), text.String(), nil
}

// SendWelcomeEmail greets a newly registered account
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	return s.send(ctx, "welcome", toEmail, "", "Welcome to Alloneword!", emailContent{
		Title: "Welcome to Alloneword!",
		Paragraphs: []string{
			fmt.Sprintf("Hi %s,", toName),
			"Your account is ready. Practise phrases, earn belts and climb the leaderboard.",
		},
		ButtonURL:  s.appBaseURL + "/login",
		ButtonText: "Get Started",
	})
}

// SendLinkEmail tells a parent a student has been linked to their account
func (s *EmailService) SendLinkEmail(ctx context.Context, toEmail, parentName, childName string) error {
	return s.send(ctx, "link", toEmail, "", "You can now follow "+childName+"'s progress", emailContent{
		Title: "Student linked",
		Paragraphs: []string{
			fmt.Sprintf("Hi %s,", parentName),
			fmt.Sprintf("%s has been linked to your account. You can now see their practice and belts on your dashboard.", childName),
		},
		ButtonURL:  s.appBaseURL + "/parent",
		ButtonText: "View Dashboard",
	})
}

// SendBeltEmail tells a parent their child earned a new belt
func (s *EmailService) SendBeltEmail(ctx context.Context, toEmail, parentName, childName, belt string) error {
	return s.send(ctx, "belt", toEmail, "", childName+" earned the "+belt+" belt!", emailContent{
		Title: belt + " belt earned",
		Paragraphs: []string{
			fmt.Sprintf("Hi %s,", parentName),
			fmt.Sprintf("Great news! %s just reached the %s belt.", childName, belt),
		},
		ButtonURL:  s.appBaseURL + "/parent",
		ButtonText: "See Progress",
	})
}

// SendContactEmail forwards a contact form message to the organisation
func (s *EmailService) SendContactEmail(ctx context.Context, toEmail, fromName, fromEmail, message string) error {
	return s.send(ctx, "contact", toEmail, fromEmail, "Contact form: "+fromName, emailContent{
		Title: "New contact message",
		Paragraphs: []string{
			fmt.Sprintf("From: %s <%s>", fromName, fromEmail),
			message,
		},
	})
}

func (s *EmailService) send(ctx context.Context, kind, toEmail, replyTo, subject string, content emailContent) error {
	if !s.IsEnabled() {
		slog.Info("skipping email send (service disabled)", "kind", kind, "to", toEmail)
		return nil
	}

	htmlBody, textBody, err := content.render()
	if err != nil {
		return err
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
	if replyTo != "" {
		input.ReplyToAddresses = []string{replyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		slog.Debug("SES message accepted", "message_id", *result.MessageId)
	}
	slog.Info("email sent", "kind", kind, "to", toEmail)
	return nil
}
