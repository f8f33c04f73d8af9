package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"
)

const receiptTag = "vote_receipt"

// SESAPI is the part of the SESv2 client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESClient sends receipts through SESv2 from a fixed sender address.
type SESClient struct {
	client SESAPI
	sender string
}

// NewSESClient loads AWS config for region. Static credentials are used when
// both keys are set, the default AWS chain otherwise.
func NewSESClient(ctx context.Context, accessKeyID, secretAccessKey, region, sender string) (*SESClient, error) {
	if region == "" {
		return nil, fmt.Errorf("ses region is required")
	}
	if strings.TrimSpace(sender) == "" {
		return nil, fmt.Errorf("ses sender is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewSESClientWithAPI(sesv2.NewFromConfig(awsCfg), sender), nil
}

func NewSESClientWithAPI(client SESAPI, sender string) *SESClient {
	return &SESClient{client: client, sender: strings.TrimSpace(sender)}
}

// Send delivers msg as plain text, tagged so bounces can be traced to
// receipts.
func (c *SESClient) Send(ctx context.Context, recipient string, msg Message) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("ses client is not initialized")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.sender),
		Destination:      &types.Destination{ToAddresses: []string{recipient}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{{Name: aws.String("category"), Value: aws.String(receiptTag)}},
	}

	out, err := c.client.SendEmail(ctx, input)
	if err != nil {
		_, domain, _ := strings.Cut(recipient, "@")
		log.Ctx(ctx).Error().Err(err).Str("recipient_domain", domain).Str("subject", msg.Subject).Msg("Failed to send SES email")
		return fmt.Errorf("send ses email: %w", err)
	}
	if out != nil && out.MessageId != nil {
		log.Ctx(ctx).Debug().Str("message_id", *out.MessageId).Msg("Receipt email accepted")
	}
	return nil
}
