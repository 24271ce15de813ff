package s3store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dev-tams/bucketsweep/internal/retry"
	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

type Bucket struct {
	bucket string
	region string
	client *s3.Client
}

type Options struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func New(ctx context.Context, opt Options) (*Bucket, error) {
	if opt.Bucket == "" || opt.Region == "" {
		return nil, fmt.Errorf("s3: bucket and region are required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opt.Region),
	}
	// static keys when given, default credential chain otherwise
	if opt.AccessKey != "" || opt.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opt.AccessKey, opt.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(creds))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Bucket{
		bucket: opt.Bucket,
		region: opt.Region,
		client: s3.NewFromConfig(cfg),
	}, nil
}

func (b *Bucket) Name() string { return b.bucket }

func (b *Bucket) Location(key string) string {
	return fmt.Sprintf("s3://%s/%s", b.bucket, key)
}

func (b *Bucket) List(ctx context.Context, prefix string) ([]object.Info, error) {
	p := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	var out []object.Info
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, classify(fmt.Errorf("s3 list %s: %w", prefix, err))
		}
		for _, obj := range page.Contents {
			out = append(out, object.Info{
				Key:     aws.ToString(obj.Key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NoSuchKey", "NotFound":
				return fmt.Errorf("s3 delete %s: %w", key, object.ErrNotFound)
			}
		}
		return classify(fmt.Errorf("s3 delete %s: %w", key, err))
	}
	return nil
}

// classify marks errors that retrying cannot fix.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "NoSuchBucket":
			return retry.Permanent(err)
		}
	}
	return err
}
