package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Function-field mocks. A nil func field fails the call so unexpected calls surface in
// the test, and every call is recorded by operation name.

type callLog struct {
	Calls []string
}

func (c *callLog) record(op string) { c.Calls = append(c.Calls, op) }

func (c *callLog) count(op string) int {
	n := 0
	for _, call := range c.Calls {
		if call == op {
			n++
		}
	}
	return n
}

func unexpected(op string) error { return fmt.Errorf("unexpected call to %s", op) }

type MockEC2Client struct {
	callLog
	DescribeInstancesFunc func(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	RunInstancesFunc      func(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	StartInstancesFunc    func(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstancesFunc     func(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

func (m *MockEC2Client) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	m.record("DescribeInstances")
	if m.DescribeInstancesFunc == nil {
		return nil, unexpected("DescribeInstances")
	}
	return m.DescribeInstancesFunc(ctx, params, optFns...)
}

func (m *MockEC2Client) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	m.record("RunInstances")
	if m.RunInstancesFunc == nil {
		return nil, unexpected("RunInstances")
	}
	return m.RunInstancesFunc(ctx, params, optFns...)
}

func (m *MockEC2Client) StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	m.record("StartInstances")
	if m.StartInstancesFunc == nil {
		return nil, unexpected("StartInstances")
	}
	return m.StartInstancesFunc(ctx, params, optFns...)
}

func (m *MockEC2Client) StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	m.record("StopInstances")
	if m.StopInstancesFunc == nil {
		return nil, unexpected("StopInstances")
	}
	return m.StopInstancesFunc(ctx, params, optFns...)
}

type MockS3Client struct {
	callLog
	CreateBucketFunc     func(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketTaggingFunc func(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	GetBucketTaggingFunc func(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	ListBucketsFunc      func(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	PutObjectFunc        func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func (m *MockS3Client) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.record("CreateBucket")
	if m.CreateBucketFunc == nil {
		return nil, unexpected("CreateBucket")
	}
	return m.CreateBucketFunc(ctx, params, optFns...)
}

func (m *MockS3Client) PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	m.record("PutBucketTagging")
	if m.PutBucketTaggingFunc == nil {
		return nil, unexpected("PutBucketTagging")
	}
	return m.PutBucketTaggingFunc(ctx, params, optFns...)
}

func (m *MockS3Client) GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	m.record("GetBucketTagging")
	if m.GetBucketTaggingFunc == nil {
		return nil, unexpected("GetBucketTagging")
	}
	return m.GetBucketTaggingFunc(ctx, params, optFns...)
}

func (m *MockS3Client) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	m.record("ListBuckets")
	if m.ListBucketsFunc == nil {
		return nil, unexpected("ListBuckets")
	}
	return m.ListBucketsFunc(ctx, params, optFns...)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.record("PutObject")
	if m.PutObjectFunc == nil {
		return nil, unexpected("PutObject")
	}
	return m.PutObjectFunc(ctx, params, optFns...)
}

type MockRoute53Client struct {
	callLog
	CreateHostedZoneFunc         func(ctx context.Context, params *route53.CreateHostedZoneInput, optFns ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error)
	ChangeTagsForResourceFunc    func(ctx context.Context, params *route53.ChangeTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ChangeTagsForResourceOutput, error)
	ListHostedZonesByNameFunc    func(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error)
	ListTagsForResourceFunc      func(ctx context.Context, params *route53.ListTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ListTagsForResourceOutput, error)
	ChangeResourceRecordSetsFunc func(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
	ListHostedZonesFunc          func(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ListResourceRecordSetsFunc   func(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
}

func (m *MockRoute53Client) CreateHostedZone(ctx context.Context, params *route53.CreateHostedZoneInput, optFns ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error) {
	m.record("CreateHostedZone")
	if m.CreateHostedZoneFunc == nil {
		return nil, unexpected("CreateHostedZone")
	}
	return m.CreateHostedZoneFunc(ctx, params, optFns...)
}

func (m *MockRoute53Client) ChangeTagsForResource(ctx context.Context, params *route53.ChangeTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ChangeTagsForResourceOutput, error) {
	m.record("ChangeTagsForResource")
	if m.ChangeTagsForResourceFunc == nil {
		return nil, unexpected("ChangeTagsForResource")
	}
	return m.ChangeTagsForResourceFunc(ctx, params, optFns...)
}

func (m *MockRoute53Client) ListHostedZonesByName(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error) {
	m.record("ListHostedZonesByName")
	if m.ListHostedZonesByNameFunc == nil {
		return nil, unexpected("ListHostedZonesByName")
	}
	return m.ListHostedZonesByNameFunc(ctx, params, optFns...)
}

func (m *MockRoute53Client) ListTagsForResource(ctx context.Context, params *route53.ListTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ListTagsForResourceOutput, error) {
	m.record("ListTagsForResource")
	if m.ListTagsForResourceFunc == nil {
		return nil, unexpected("ListTagsForResource")
	}
	return m.ListTagsForResourceFunc(ctx, params, optFns...)
}

func (m *MockRoute53Client) ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	m.record("ChangeResourceRecordSets")
	if m.ChangeResourceRecordSetsFunc == nil {
		return nil, unexpected("ChangeResourceRecordSets")
	}
	return m.ChangeResourceRecordSetsFunc(ctx, params, optFns...)
}

func (m *MockRoute53Client) ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	m.record("ListHostedZones")
	if m.ListHostedZonesFunc == nil {
		return nil, unexpected("ListHostedZones")
	}
	return m.ListHostedZonesFunc(ctx, params, optFns...)
}

func (m *MockRoute53Client) ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	m.record("ListResourceRecordSets")
	if m.ListResourceRecordSetsFunc == nil {
		return nil, unexpected("ListResourceRecordSets")
	}
	return m.ListResourceRecordSetsFunc(ctx, params, optFns...)
}

type MockSTSClient struct {
	GetCallerIdentityFunc func(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

func (m *MockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if m.GetCallerIdentityFunc == nil {
		return nil, unexpected("GetCallerIdentity")
	}
	return m.GetCallerIdentityFunc(ctx, params, optFns...)
}
