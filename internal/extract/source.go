package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures access to s3:// sources. Empty fields fall back to
// the default AWS credential and region chain.
type S3Options struct {
	Region          string
	Endpoint        string // S3-compatible endpoint, e.g. MinIO
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectGetter is the part of the S3 client the extractor needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SourceError reports a source that could not be opened.
type SourceError struct {
	Source string
	Op     string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s %s: %v", e.Source, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(src string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(src, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Opener opens local paths and s3:// objects.
type Opener struct {
	S3     S3Options
	client ObjectGetter
}

// NewOpener returns an Opener. The S3 client is created on first use.
func NewOpener(opts S3Options) *Opener {
	return &Opener{S3: opts}
}

// WithClient replaces the S3 client.
func (o *Opener) WithClient(c ObjectGetter) *Opener {
	o.client = c
	return o
}

// Open returns a reader for src. The caller closes it.
func (o *Opener) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	bucket, key, isS3 := ParseS3URI(src)
	if !isS3 {
		f, err := os.Open(src)
		if err != nil {
			return nil, &SourceError{Source: src, Op: "open", Err: err}
		}
		return f, nil
	}

	if o.client == nil {
		c, err := newS3Client(ctx, o.S3)
		if err != nil {
			return nil, &SourceError{Source: src, Op: "aws_config", Err: err}
		}
		o.client = c
	}
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &SourceError{Source: src, Op: "get_object", Err: err}
	}
	return out.Body, nil
}

func newS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	}), nil
}
