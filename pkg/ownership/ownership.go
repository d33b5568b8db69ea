// Package ownership implements the tag convention platform-cli uses to recognise the
// resources it created.
//
// A resource is managed iff its tag set contains CreatedBy=platform-cli. Every manager
// filters discovery results and guards mutations with IsManaged.
package ownership

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	KeyCreatedBy   = "CreatedBy"
	CreatedByValue = "platform-cli"
	KeyOwner       = "Owner"
	KeyName        = "Name"

	// UnknownOwner is reported for managed resources without an Owner tag.
	UnknownOwner = "unknown"
)

// Tags is an unordered tag set with unique keys.
type Tags map[string]string

// New returns the ownership tags for a resource created by this tool.
// The Name tag is omitted when name is empty.
func New(name, owner string) Tags {
	t := Tags{
		KeyCreatedBy: CreatedByValue,
		KeyOwner:     owner,
	}
	if name != "" {
		t[KeyName] = name
	}
	return t
}

// IsManaged reports whether a tag set marks the resource as created by this tool.
func IsManaged(tags map[string]string) bool {
	return tags[KeyCreatedBy] == CreatedByValue
}

// Owner returns the Owner tag, or UnknownOwner when absent.
func (t Tags) Owner() string {
	if v, ok := t[KeyOwner]; ok && v != "" {
		return v
	}
	return UnknownOwner
}

// Keys returns the tag keys in sorted order.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ManagedFilter is the EC2 describe filter selecting managed resources.
func ManagedFilter() ec2types.Filter {
	return ec2types.Filter{
		Name:   aws.String("tag:" + KeyCreatedBy),
		Values: []string{CreatedByValue},
	}
}

// FromEC2 converts EC2 tags, skipping entries without a key.
func FromEC2(tags []ec2types.Tag) Tags {
	out := make(Tags, len(tags))
	for _, tag := range tags {
		if tag.Key != nil {
			out[*tag.Key] = aws.ToString(tag.Value)
		}
	}
	return out
}

// EC2 converts the set to EC2 tags in key order.
func (t Tags) EC2() []ec2types.Tag {
	out := make([]ec2types.Tag, 0, len(t))
	for _, k := range t.Keys() {
		out = append(out, ec2types.Tag{Key: aws.String(k), Value: aws.String(t[k])})
	}
	return out
}

func FromS3(tags []s3types.Tag) Tags {
	out := make(Tags, len(tags))
	for _, tag := range tags {
		if tag.Key != nil {
			out[*tag.Key] = aws.ToString(tag.Value)
		}
	}
	return out
}

func (t Tags) S3() []s3types.Tag {
	out := make([]s3types.Tag, 0, len(t))
	for _, k := range t.Keys() {
		out = append(out, s3types.Tag{Key: aws.String(k), Value: aws.String(t[k])})
	}
	return out
}

func FromRoute53(tags []r53types.Tag) Tags {
	out := make(Tags, len(tags))
	for _, tag := range tags {
		if tag.Key != nil {
			out[*tag.Key] = aws.ToString(tag.Value)
		}
	}
	return out
}

func (t Tags) Route53() []r53types.Tag {
	out := make([]r53types.Tag, 0, len(t))
	for _, k := range t.Keys() {
		out = append(out, r53types.Tag{Key: aws.String(k), Value: aws.String(t[k])})
	}
	return out
}

// OwnerFunc resolves the value written to the Owner tag. It is only called by
// workflows that create resources.
type OwnerFunc func(ctx context.Context) (string, error)

// StaticOwner returns an OwnerFunc that always yields id.
func StaticOwner(id string) OwnerFunc {
	return func(context.Context) (string, error) { return id, nil }
}
