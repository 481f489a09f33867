package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3PartSize = 16 * 1024 * 1024

// S3Options configures an S3 mirror of the model repository.
type S3Options struct {
	Bucket string
	Region string
	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	// Path-style addressing is used when set.
	Endpoint string
	// Prefix is prepended to object keys.
	Prefix string
}

// S3Source fetches model files from a bucket laid out as
// <prefix>/<owner>/<name>/<file>.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source creates an S3 source. Static credentials are read from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN; without
// them requests are anonymous.
func NewS3Source(opts S3Options) *S3Source {
	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		creds = credentials.NewStaticCredentialsProvider(id,
			os.Getenv("AWS_SECRET_ACCESS_KEY"), os.Getenv("AWS_SESSION_TOKEN"))
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	client := s3.New(s3.Options{
		Region:      region,
		Credentials: creds,
	}, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{
		client: client,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}
}

// Key returns the object key of a repository file.
func (s *S3Source) Key(repo Repo, name string) string {
	return path.Join(s.prefix, repo.Owner, repo.Name, name)
}

// Get implements Source.
func (s *S3Source) Get(ctx context.Context, repo Repo, name string, w io.Writer) error {
	downloader := manager.NewDownloader(s.client, func(d *manager.Downloader) {
		d.PartSize = s3PartSize
	})
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(repo, name)),
	}

	// Files support concurrent ranged writes directly.
	if wa, ok := w.(io.WriterAt); ok {
		if _, err := downloader.Download(ctx, wa, input); err != nil {
			return fmt.Errorf("downloading s3://%s/%s: %w", s.bucket, *input.Key, err)
		}
		return nil
	}

	buffer := manager.NewWriteAtBuffer([]byte{})
	if _, err := downloader.Download(ctx, buffer, input); err != nil {
		return fmt.Errorf("downloading s3://%s/%s: %w", s.bucket, *input.Key, err)
	}
	if _, err := w.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("writing s3://%s/%s: %w", s.bucket, *input.Key, err)
	}
	return nil
}
