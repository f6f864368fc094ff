package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3OutboxMailer drops each message as an RFC 5322 .eml object into an
// S3-compatible bucket, where a separate delivery agent picks it up.
type S3OutboxMailer struct {
	client putObjectAPI
	bucket string
	from   string
	now    func() time.Time
	log    logging.Logger
}

// NewS3OutboxMailer builds the S3 client from the S3* fields of cfg.
func NewS3OutboxMailer(ctx context.Context, cfg *config.Config, log logging.Logger) (*S3OutboxMailer, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3OutboxMailer{
		client: client,
		bucket: cfg.S3Bucket,
		from:   cfg.MailFrom,
		now:    time.Now,
		log:    log.With("module", "mailer"),
	}, nil
}

// OutboxKey returns the object key for a message queued at t.
func OutboxKey(t time.Time, id string) string {
	return fmt.Sprintf("outbox/%d/%02d/%02d/%s.eml", t.Year(), t.Month(), t.Day(), id)
}

func (m *S3OutboxMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := checkHeader(to, subject); err != nil {
		return err
	}

	now := m.now().UTC()
	id := uuid.NewString()
	msg := buildMessage(m.from, to, subject, body, id, now)
	key := OutboxKey(now, id)

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(msg),
		ContentType: aws.String("message/rfc822"),
	})
	if err != nil {
		return fmt.Errorf("put outbox object: %w", err)
	}

	m.log.Info(ctx, "mail queued", "to", to, "key", key)
	return nil
}

func buildMessage(from, to, subject, body, id string, date time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@gophaccounts>\r\n", id)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.Bytes()
}
