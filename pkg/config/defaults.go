// Package config defines default configuration and the compute policy.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
)

// ComputePolicy defines the constraints applied to instance creation.
type ComputePolicy struct {
	// AllowedInstanceTypes is the whitelist of instance types.
	AllowedInstanceTypes []string `mapstructure:"allowed_instance_types"`
	// Images maps an operator-facing alias to an AMI id.
	Images map[string]string `mapstructure:"images"`
	// MinCount and MaxCount bound the instances requested per create.
	MinCount int `mapstructure:"min_count"`
	MaxCount int `mapstructure:"max_count"`
	// MaxManagedInstances caps running+pending instances created by this tool.
	// None of these limits may be raised above DefaultComputePolicy.
	MaxManagedInstances int `mapstructure:"max_managed_instances"`
}

// Config is the runtime configuration of a single invocation.
type Config struct {
	Region        string        `mapstructure:"region"`
	Profile       string        `mapstructure:"profile"`
	Endpoint      string        `mapstructure:"endpoint_url"`
	Owner         string        `mapstructure:"owner"`
	RulesFile     string        `mapstructure:"rules"`
	Verbose       bool          `mapstructure:"verbose"`
	JSONLogs      bool          `mapstructure:"json_logs"`
	OtelEndpoint  string        `mapstructure:"otel_endpoint"`
	SkipTelemetry bool          `mapstructure:"skip_telemetry"`
	Compute       ComputePolicy `mapstructure:"compute"`
}

// Defaults.
const (
	DefaultRegion = "us-east-1"

	ImageAmazonLinux = "amazon-linux"
	ImageUbuntu      = "ubuntu"
)

// DefaultComputePolicy returns the compute constraints.
func DefaultComputePolicy() ComputePolicy {
	return ComputePolicy{
		AllowedInstanceTypes: []string{"t2.small", "t3.micro"},
		Images: map[string]string{
			ImageAmazonLinux: "ami-0532be01f26a3de55",
			ImageUbuntu:      "ami-0b6c6ebed2801a5cb",
		},
		MinCount:            1,
		MaxCount:            2,
		MaxManagedInstances: 2,
	}
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		Region:  DefaultRegion,
		Compute: DefaultComputePolicy(),
	}
}

// SetDefaults registers the defaults on v so config files and env vars only override
// what they set.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("region", def.Region)
	v.SetDefault("skip_telemetry", def.SkipTelemetry)
	v.SetDefault("compute.allowed_instance_types", def.Compute.AllowedInstanceTypes)
	v.SetDefault("compute.images", def.Compute.Images)
	v.SetDefault("compute.min_count", def.Compute.MinCount)
	v.SetDefault("compute.max_count", def.Compute.MaxCount)
	v.SetDefault("compute.max_managed_instances", def.Compute.MaxManagedInstances)
}

// Load unmarshals v into a Config and validates the compute policy.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	// Viper lowercases map keys already; aliases are matched case-insensitively.
	images := make(map[string]string, len(cfg.Compute.Images))
	for alias, ami := range cfg.Compute.Images {
		images[strings.ToLower(alias)] = ami
	}
	cfg.Compute.Images = images

	if err := cfg.Compute.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects policies that could never admit a request, and overrides that
// widen the fixed limits. Config may narrow the policy or remap AMI ids only.
func (p ComputePolicy) Validate() error {
	limits := DefaultComputePolicy()
	for _, typ := range p.AllowedInstanceTypes {
		if !slices.Contains(limits.AllowedInstanceTypes, typ) {
			return errs.Validation("compute policy: instance type %q is not permitted (allowed: %s)",
				typ, strings.Join(limits.AllowedInstanceTypes, ", "))
		}
	}
	if p.MaxCount > limits.MaxCount {
		return errs.Validation("compute policy: max_count %d exceeds the limit of %d", p.MaxCount, limits.MaxCount)
	}
	if p.MaxManagedInstances > limits.MaxManagedInstances {
		return errs.Validation("compute policy: max_managed_instances %d exceeds the limit of %d",
			p.MaxManagedInstances, limits.MaxManagedInstances)
	}

	if len(p.AllowedInstanceTypes) == 0 {
		return errs.Validation("compute policy: no allowed instance types")
	}
	if len(p.Images) == 0 {
		return errs.Validation("compute policy: no images configured")
	}
	if p.MinCount < 1 || p.MaxCount < p.MinCount {
		return errs.Validation("compute policy: invalid count range %d..%d", p.MinCount, p.MaxCount)
	}
	if p.MaxManagedInstances < 1 {
		return errs.Validation("compute policy: max_managed_instances must be positive")
	}
	return nil
}
