package aws

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/DrSkyle/platform-cli/pkg/config"
	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
	"github.com/DrSkyle/platform-cli/pkg/engine/policy"
	"github.com/DrSkyle/platform-cli/pkg/ownership"
)

// EC2API is the subset of the EC2 client used by ComputeManager.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

// Instance is a managed EC2 instance as reported to the operator.
type Instance struct {
	ID    string         `json:"instance_id" yaml:"instance_id"`
	Type  string         `json:"instance_type" yaml:"instance_type"`
	State string         `json:"state" yaml:"state"`
	Image string         `json:"image_id,omitempty" yaml:"image_id,omitempty"`
	Tags  ownership.Tags `json:"tags" yaml:"tags"`
}

// Name returns the Name tag.
func (i Instance) Name() string { return i.Tags[ownership.KeyName] }

// ManageResult describes a start/stop applied to every instance sharing a name.
type ManageResult struct {
	Name        string
	Action      string
	InstanceIDs []string
}

// ComputeManager creates, lists and starts/stops instances tagged as managed.
type ComputeManager struct {
	Client    EC2API
	Validator *policy.Validator
	Guard     *policy.Guard
	Owner     ownership.OwnerFunc
	Logger    *slog.Logger
}

func NewComputeManager(client EC2API, p config.ComputePolicy, guard *policy.Guard, owner ownership.OwnerFunc, logger *slog.Logger) *ComputeManager {
	return &ComputeManager{
		Client:    client,
		Validator: policy.NewValidator(p),
		Guard:     guard,
		Owner:     owner,
		Logger:    loggerOrDefault(logger),
	}
}

// Create launches count instances of instanceType from the image alias.
//
// The quota check and the launch are two separate calls. Two operators racing can both
// pass the check and exceed the cap.
func (m *ComputeManager) Create(ctx context.Context, name, instanceType, image string, count int) (_ []Instance, err error) {
	ctx, span := startSpan(ctx, "compute.create",
		attribute.String("instance.name", name),
		attribute.String("instance.type", instanceType),
		attribute.Int("instance.count", count))
	defer func() { finishSpan(span, err) }()

	ami, err := m.Validator.ResolveImage(image)
	if err != nil {
		return nil, err
	}
	if err := m.Validator.CheckInstanceType(instanceType); err != nil {
		return nil, err
	}
	if err := m.Validator.CheckCount(count); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("Instance name is required.")
	}

	if err := m.Guard.Check(ctx, policy.Request{
		Kind:      "instance",
		Operation: "create",
		Name:      name,
		Props: map[string]any{
			"type":  instanceType,
			"image": strings.ToLower(image),
			"ami":   ami,
			"count": count,
		},
	}); err != nil {
		return nil, err
	}

	existing, err := m.countActive(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("instance.existing", existing))
	if err := m.Validator.CheckQuota(existing, count); err != nil {
		return nil, err
	}

	owner, err := resolveOwner(ctx, m.Owner)
	if err != nil {
		return nil, err
	}

	m.Logger.Debug("Launching instances", "name", name, "type", instanceType, "ami", ami, "count", count)
	out, err := m.Client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:      aws.String(ami),
		InstanceType: types.InstanceType(instanceType),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(int32(count)),
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeInstance,
			Tags:         ownership.New(name, owner).EC2(),
		}},
	})
	if err != nil {
		return nil, errs.Remote("RunInstances", err)
	}

	created := make([]Instance, 0, len(out.Instances))
	for _, inst := range out.Instances {
		created = append(created, toInstance(inst))
	}
	m.Logger.Info("Instances launched", "name", name, "count", len(created))
	return created, nil
}

// countActive counts running and pending managed instances.
func (m *ComputeManager) countActive(ctx context.Context) (int, error) {
	out, err := m.Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			ownership.ManagedFilter(),
			{Name: aws.String("instance-state-name"), Values: []string{"running", "pending"}},
		},
	})
	if err != nil {
		return 0, errs.Remote("DescribeInstances", err)
	}
	n := 0
	for _, r := range out.Reservations {
		n += len(r.Instances)
	}
	return n, nil
}

// Manage starts or stops every managed instance whose Name tag equals name.
func (m *ComputeManager) Manage(ctx context.Context, name, action string) (_ *ManageResult, err error) {
	ctx, span := startSpan(ctx, "compute.manage",
		attribute.String("instance.name", name),
		attribute.String("instance.action", action))
	defer func() { finishSpan(span, err) }()

	act, err := policy.ParseInstanceAction(action)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("Instance name is required.")
	}

	out, err := m.Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String("tag:" + ownership.KeyName), Values: []string{name}},
			ownership.ManagedFilter(),
		},
	})
	if err != nil {
		return nil, errs.Remote("DescribeInstances", err)
	}

	var ids []string
	for _, r := range out.Reservations {
		for _, inst := range r.Instances {
			if inst.InstanceId != nil && ownership.IsManaged(ownership.FromEC2(inst.Tags)) {
				ids = append(ids, *inst.InstanceId)
			}
		}
	}
	if len(ids) == 0 {
		return nil, errs.NotFound("No EC2 instance found with name: %s", name)
	}

	if err := m.Guard.Check(ctx, policy.Request{
		Kind:      "instance",
		Operation: act,
		Name:      name,
		Props:     map[string]any{"instance_ids": ids},
	}); err != nil {
		return nil, err
	}

	m.Logger.Debug("Changing instance state", "name", name, "action", act, "ids", ids)
	switch act {
	case policy.ActionStart:
		if _, err := m.Client.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: ids}); err != nil {
			return nil, errs.Remote("StartInstances", err)
		}
	case policy.ActionStop:
		if _, err := m.Client.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: ids}); err != nil {
			return nil, errs.Remote("StopInstances", err)
		}
	}
	return &ManageResult{Name: name, Action: act, InstanceIDs: ids}, nil
}

// List returns every instance tagged as managed.
func (m *ComputeManager) List(ctx context.Context) (_ []Instance, err error) {
	ctx, span := startSpan(ctx, "compute.list")
	defer func() { finishSpan(span, err) }()

	out, err := m.Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{ownership.ManagedFilter()},
	})
	if err != nil {
		return nil, errs.Remote("DescribeInstances", err)
	}

	instances := []Instance{}
	for _, r := range out.Reservations {
		for _, inst := range r.Instances {
			i := toInstance(inst)
			// The filter is applied remotely; re-check in case the endpoint ignores it.
			if !ownership.IsManaged(i.Tags) {
				continue
			}
			instances = append(instances, i)
		}
	}
	span.SetAttributes(attribute.Int("instance.managed", len(instances)))
	return instances, nil
}

func toInstance(inst types.Instance) Instance {
	i := Instance{
		ID:    aws.ToString(inst.InstanceId),
		Type:  string(inst.InstanceType),
		Image: aws.ToString(inst.ImageId),
		Tags:  ownership.FromEC2(inst.Tags),
	}
	if inst.State != nil {
		i.State = string(inst.State.Name)
	}
	return i
}
