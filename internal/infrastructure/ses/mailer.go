package ses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/famwell-api/internal/config"
)

// Mailer sends email through Amazon SESv2. It satisfies the same interface
// as the SMTP mailer and is selected via MAILER_DRIVER=ses.
type Mailer struct {
	client *sesv2.Client
	from   string
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SESRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Mailer{client: sesv2.NewFromConfig(awsCfg), from: cfg.SESFrom}, nil
}

func (m *Mailer) SendEmail(to, subject, body string) error {
	_, err := m.client.SendEmail(context.Background(), &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	return err
}
