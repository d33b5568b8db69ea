//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWorkflow(t *testing.T) {
	ec2Client := ec2.NewFromConfig(awsCfg)

	// A foreign instance must never be listed or counted.
	_, err := ec2Client.RunInstances(context.Background(), &ec2.RunInstancesInput{
		ImageId:      aws.String("ami-12345678"),
		InstanceType: ec2types.InstanceTypeT3Micro,
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		TagSpecifications: []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeInstance,
			Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("foreign")}},
		}},
	})
	require.NoError(t, err)

	res := RunCLI(t, "", "compute", "create", "--name", "web", "--type", "t3.micro", "--ami", "ubuntu", "--count", "2")
	require.Equal(t, 0, res.ExitCode, res.Stdout)
	assert.Equal(t, 2, strings.Count(res.Stdout, "Created EC2 instance: "))

	res = RunCLI(t, "", "compute", "create", "--name", "api", "--type", "t2.small", "--ami", "amazon-linux")
	assert.Equal(t, 5, res.ExitCode)
	assert.Contains(t, res.Stdout, "Limit reached!")

	res = RunCLI(t, "", "compute", "list")
	require.Equal(t, 0, res.ExitCode)
	assert.Equal(t, 2, strings.Count(res.Stdout, "Instance ID: "))
	assert.NotContains(t, res.Stdout, "foreign")

	res = RunCLI(t, "", "compute", "manage", "--name", "web", "--action", "stop")
	require.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "Stopped instance(s) with name: web")

	res = RunCLI(t, "", "compute", "manage", "--name", "foreign", "--action", "stop")
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stdout, "No EC2 instance found with name: foreign")
}

func TestStorageWorkflow(t *testing.T) {
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.UsePathStyle = true })
	_, err := s3Client.CreateBucket(context.Background(), &s3.CreateBucketInput{Bucket: aws.String("e2e-foreign")})
	require.NoError(t, err)

	res := RunCLI(t, "", "storage", "create", "--name", "e2e-private", "--access", "private")
	require.Equal(t, 0, res.ExitCode, res.Stdout)
	assert.Contains(t, res.Stdout, "Created S3 bucket: e2e-private with private access")

	res = RunCLI(t, "nope\n", "storage", "create", "--name", "e2e-public", "--access", "public")
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "Bucket creation aborted.")

	file := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))
	res = RunCLI(t, "", "s3", "upload_file", "--name", "e2e-private", "--file_path", file)
	require.Equal(t, 0, res.ExitCode, res.Stdout)
	assert.Contains(t, res.Stdout, "Successfully uploaded hello.txt to S3 bucket e2e-private!")

	res = RunCLI(t, "", "storage", "list")
	require.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, " - e2e-private (Owner: e2e)")
	assert.NotContains(t, res.Stdout, "e2e-foreign")
	assert.NotContains(t, res.Stdout, "e2e-public")
}

func TestDNSWorkflow(t *testing.T) {
	r53 := route53.NewFromConfig(awsCfg)
	_, err := r53.CreateHostedZone(context.Background(), &route53.CreateHostedZoneInput{
		Name:            aws.String("foreign.test"),
		CallerReference: aws.String("foreign.test"),
	})
	require.NoError(t, err)

	res := RunCLI(t, "", "dns", "create-zone", "--domain", "e2e.test")
	require.Equal(t, 0, res.ExitCode, res.Stdout)
	assert.Contains(t, res.Stdout, "Hosted zone created: ")

	res = RunCLI(t, "", "dns", "manage-records", "--domain", "e2e.test", "--ip-address", "203.0.113.10", "--action", "create")
	require.Equal(t, 0, res.ExitCode, res.Stdout)
	assert.Contains(t, res.Stdout, "Record CREATE successful for e2e.test -> 203.0.113.10")

	res = RunCLI(t, "", "route53", "manage_records", "--domain", "foreign.test", "--ip_address", "203.0.113.11", "--action", "update")
	assert.Equal(t, 4, res.ExitCode)
	assert.Contains(t, res.Stdout, "Access Denied: Zone foreign.test was not created by this CLI.")

	res = RunCLI(t, "", "dns", "list", "--output", "hcl")
	require.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "aws_route53_zone.e2e_test")
	assert.NotContains(t, res.Stdout, "foreign")
}
