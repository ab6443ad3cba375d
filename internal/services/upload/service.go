// Package upload signs direct-to-bucket uploads and deletes stored objects.
package upload

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/terraconstructs/sandaran/internal/config"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// DefaultURLTTL is how long a signed upload URL stays valid.
const DefaultURLTTL = 15 * time.Minute

// Upload categories, one folder each under the project.
const (
	TypeReports   = "reports"
	TypeDocuments = "documents"
	TypeEmergency = "emergency"
)

// SignInput asks for an upload URL.
type SignInput struct {
	ProjectSlug string `mapstructure:"projectSlug"`
	Type        string `mapstructure:"type"`
	FileName    string `mapstructure:"fileName"`
	ContentType string `mapstructure:"contentType"`
}

// SignedUpload is returned to the client, which PUTs the file to URL and
// then references PublicID when attaching it.
type SignedUpload struct {
	URL       string              `json:"url"`
	Method    string              `json:"method"`
	Headers   map[string][]string `json:"headers,omitempty"`
	PublicID  string              `json:"publicId"`
	ExpiresAt time.Time           `json:"expiresAt"`
}

// ObjectAPI is the subset of the S3 client used for deletion.
type ObjectAPI interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client used for signing.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Options configures key layout and URL lifetime.
type Options struct {
	Bucket string
	Prefix string
	TTL    time.Duration
}

// Service signs uploads into one bucket under a common prefix.
type Service struct {
	objects   ObjectAPI
	presigner PresignAPI
	bucket    string
	prefix    string
	ttl       time.Duration
	now       func() time.Time
}

// NewService wires a service over explicit S3 clients.
func NewService(objects ObjectAPI, presigner PresignAPI, opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Service{
		objects:   objects,
		presigner: presigner,
		bucket:    opts.Bucket,
		prefix:    strings.Trim(opts.Prefix, "/"),
		ttl:       ttl,
		now:       time.Now,
	}
}

// NewS3Service builds the S3 clients from configuration. Static keys are
// used when given, otherwise the default AWS credential chain. A custom
// endpoint switches to path-style addressing for S3 compatible stores.
func NewS3Service(ctx context.Context, cfg config.UploadConfig) (*Service, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewService(client, s3.NewPresignClient(client), Options{
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
		TTL:    cfg.URLTTL,
	}), nil
}

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	extPattern  = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
)

// Key builds the object key for a new upload.
func (s *Service) Key(projectSlug, kind, fileName string) string {
	name := uuid.NewString()
	if ext := strings.ToLower(path.Ext(fileName)); extPattern.MatchString(ext) {
		name += ext
	}
	return path.Join(s.prefix, projectSlug, kind, name)
}

// Sign returns a presigned PUT URL for a new object.
func (s *Service) Sign(ctx context.Context, in SignInput) (*SignedUpload, error) {
	if !slugPattern.MatchString(in.ProjectSlug) {
		return nil, &validation.Error{Path: "$.projectSlug", Message: fmt.Sprintf("invalid project slug %q", in.ProjectSlug)}
	}
	switch in.Type {
	case TypeReports, TypeDocuments, TypeEmergency:
	default:
		return nil, &validation.Error{Path: "$.type", Message: fmt.Sprintf("unknown upload type %q", in.Type)}
	}

	key := s.Key(in.ProjectSlug, in.Type, in.FileName)
	put := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if in.ContentType != "" {
		put.ContentType = aws.String(in.ContentType)
	}

	expiresAt := s.now().UTC().Add(s.ttl)
	req, err := s.presigner.PresignPutObject(ctx, put, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign PutObject for %q: %w", key, err)
	}

	return &SignedUpload{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   req.SignedHeader,
		PublicID:  key,
		ExpiresAt: expiresAt,
	}, nil
}

// DeleteObject removes an uploaded object. Keys outside the upload prefix
// are rejected.
func (s *Service) DeleteObject(ctx context.Context, publicID string) error {
	key := strings.TrimPrefix(publicID, "/")
	if key == "" || strings.Contains(key, "..") || (s.prefix != "" && !strings.HasPrefix(key, s.prefix+"/")) {
		return &validation.Error{Path: "$.publicId", Message: fmt.Sprintf("invalid object key %q", publicID)}
	}
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}
