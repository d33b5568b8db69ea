package aws

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/DrSkyle/platform-cli/pkg/config"
	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
	"github.com/DrSkyle/platform-cli/pkg/engine/policy"
	"github.com/DrSkyle/platform-cli/pkg/ownership"
)

// S3API is the subset of the S3 client used by StorageManager.
type S3API interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Confirmer asks the operator a question and returns the raw answer.
type Confirmer func(ctx context.Context, question string) (string, error)

// PublicBucketQuestion is asked before a public bucket is created.
const PublicBucketQuestion = "Are you sure that the s3 will be public? (yes/no)"

// noSuchTagSet is returned by GetBucketTagging for buckets without tags.
const noSuchTagSet = "NoSuchTagSet"

// BucketCreateResult reports both phases of a bucket creation. Tagged is false when the
// bucket exists but the ownership tags could not be written.
type BucketCreateResult struct {
	Name   string
	Access string
	Tagged bool
	TagErr error
}

// UploadResult describes a completed object upload.
type UploadResult struct {
	Bucket string
	Key    string
	Path   string
	Size   int64
}

// Bucket is a managed bucket as reported to the operator.
type Bucket struct {
	Name      string         `json:"name" yaml:"name"`
	Owner     string         `json:"owner" yaml:"owner"`
	CreatedAt *time.Time     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Tags      ownership.Tags `json:"tags" yaml:"tags"`
}

// UnreadableBucket is a bucket whose tags could not be read.
type UnreadableBucket struct {
	Name string `json:"name" yaml:"name"`
	Err  string `json:"error" yaml:"error"`
}

// BucketListing is the result of List. Total counts every bucket in the account.
type BucketListing struct {
	Total      int                `json:"total" yaml:"total"`
	Managed    []Bucket           `json:"managed" yaml:"managed"`
	Unreadable []UnreadableBucket `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
}

// StorageManager creates, lists and uploads to buckets tagged as managed.
type StorageManager struct {
	Client  S3API
	Region  string
	Guard   *policy.Guard
	Owner   ownership.OwnerFunc
	Confirm Confirmer
	Logger  *slog.Logger
}

func NewStorageManager(client S3API, region string, guard *policy.Guard, owner ownership.OwnerFunc, confirm Confirmer, logger *slog.Logger) *StorageManager {
	if region == "" {
		region = config.DefaultRegion
	}
	return &StorageManager{
		Client:  client,
		Region:  region,
		Guard:   guard,
		Owner:   owner,
		Confirm: confirm,
		Logger:  loggerOrDefault(logger),
	}
}

// Create creates a bucket with the requested access level and then tags it.
// A public bucket is only created after the operator answers "yes".
func (m *StorageManager) Create(ctx context.Context, name, access string) (_ *BucketCreateResult, err error) {
	ctx, span := startSpan(ctx, "storage.create",
		attribute.String("bucket.name", name),
		attribute.String("bucket.access", access))
	defer func() { finishSpan(span, err) }()

	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("Bucket name is required.")
	}
	level, err := policy.ParseAccess(access)
	if err != nil {
		return nil, err
	}

	if err := m.Guard.Check(ctx, policy.Request{
		Kind:      "bucket",
		Operation: "create",
		Name:      name,
		Props:     map[string]any{"access": level, "region": m.Region},
	}); err != nil {
		return nil, err
	}

	if level == policy.AccessPublic {
		if err := m.confirmPublic(ctx); err != nil {
			return nil, err
		}
	}

	owner, err := resolveOwner(ctx, m.Owner)
	if err != nil {
		return nil, err
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
		ACL:    types.BucketCannedACLPrivate,
	}
	if level == policy.AccessPublic {
		input.ACL = types.BucketCannedACLPublicRead
		input.ObjectOwnership = types.ObjectOwnershipObjectWriter
	}
	// us-east-1 rejects an explicit location constraint.
	if m.Region != config.DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(m.Region),
		}
	}

	m.Logger.Debug("Creating bucket", "bucket", name, "acl", input.ACL, "region", m.Region)
	if _, err := m.Client.CreateBucket(ctx, input); err != nil {
		return nil, errs.Remote("CreateBucket", err)
	}

	res := &BucketCreateResult{Name: name, Access: level, Tagged: true}
	_, err = m.Client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(name),
		Tagging: &types.Tagging{TagSet: ownership.New("", owner).S3()},
	})
	if err != nil {
		res.Tagged = false
		res.TagErr = errs.Remote("PutBucketTagging", err)
		span.SetAttributes(attribute.Bool("bucket.untagged", true))
		m.Logger.Warn("Bucket created but not tagged", "bucket", name, "error", res.TagErr)
	}
	return res, nil
}

func (m *StorageManager) confirmPublic(ctx context.Context) error {
	if m.Confirm == nil {
		return errs.New(errs.ErrAborted, "Bucket creation aborted.")
	}
	answer, err := m.Confirm(ctx, PublicBucketQuestion)
	if err != nil {
		return err
	}
	if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
		return errs.New(errs.ErrAborted, "Bucket creation aborted.")
	}
	return nil
}

// Upload puts the local file into bucket under its base name.
func (m *StorageManager) Upload(ctx context.Context, bucket, path string) (_ *UploadResult, err error) {
	ctx, span := startSpan(ctx, "storage.upload",
		attribute.String("bucket.name", bucket),
		attribute.String("file.path", path))
	defer func() { finishSpan(span, err) }()

	if strings.TrimSpace(bucket) == "" {
		return nil, errs.Validation("Bucket name is required.")
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, errs.NotFound("File not found at %s", path)
	}
	key := filepath.Base(path)

	if err := m.Guard.Check(ctx, policy.Request{
		Kind:      "object",
		Operation: "upload",
		Name:      key,
		Props:     map[string]any{"bucket": bucket, "size": info.Size()},
	}); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NotFound("File not found at %s", path)
	}
	defer f.Close()

	m.Logger.Debug("Uploading object", "bucket", bucket, "key", key, "bytes", info.Size())
	_, err = m.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return nil, errs.Remote("PutObject", err)
	}
	return &UploadResult{Bucket: bucket, Key: key, Path: path, Size: info.Size()}, nil
}

// List reports the managed buckets. Buckets without tags are skipped; buckets whose tags
// cannot be read are recorded as unreadable.
func (m *StorageManager) List(ctx context.Context) (_ *BucketListing, err error) {
	ctx, span := startSpan(ctx, "storage.list")
	defer func() { finishSpan(span, err) }()

	out, err := m.Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, errs.Remote("ListBuckets", err)
	}

	listing := &BucketListing{Total: len(out.Buckets)}
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		tagOut, err := m.Client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
		if err != nil {
			if errs.Code(err) == noSuchTagSet {
				continue
			}
			rerr := errs.Remote("GetBucketTagging", err)
			m.Logger.Warn("Cannot read bucket tags", "bucket", name, "error", rerr)
			listing.Unreadable = append(listing.Unreadable, UnreadableBucket{Name: name, Err: rerr.Error()})
			continue
		}

		tags := ownership.FromS3(tagOut.TagSet)
		if !ownership.IsManaged(tags) {
			continue
		}
		listing.Managed = append(listing.Managed, Bucket{
			Name:      name,
			Owner:     tags.Owner(),
			CreatedAt: b.CreationDate,
			Tags:      tags,
		})
	}
	span.SetAttributes(
		attribute.Int("bucket.total", listing.Total),
		attribute.Int("bucket.managed", len(listing.Managed)),
		attribute.Int("bucket.unreadable", len(listing.Unreadable)))
	return listing, nil
}
