package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
)

func TestDefaultComputePolicy(t *testing.T) {
	p := DefaultComputePolicy()

	if p.MaxManagedInstances != 2 {
		t.Errorf("Expected MaxManagedInstances 2, got %d", p.MaxManagedInstances)
	}
	if p.MinCount != 1 || p.MaxCount != 2 {
		t.Errorf("Expected count range 1..2, got %d..%d", p.MinCount, p.MaxCount)
	}

	foundMicro := false
	for _, typ := range p.AllowedInstanceTypes {
		if typ == "t3.micro" {
			foundMicro = true
			break
		}
	}
	if !foundMicro {
		t.Error("Expected 't3.micro' to be in AllowedInstanceTypes")
	}

	if p.Images[ImageUbuntu] != "ami-0b6c6ebed2801a5cb" {
		t.Errorf("Unexpected ubuntu image %q", p.Images[ImageUbuntu])
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Default policy must validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Region != DefaultRegion {
		t.Errorf("Expected region %s, got %s", DefaultRegion, cfg.Region)
	}
	if cfg.Compute.Images[ImageAmazonLinux] != "ami-0532be01f26a3de55" {
		t.Errorf("Unexpected amazon-linux image %q", cfg.Compute.Images[ImageAmazonLinux])
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	doc := `
region: eu-west-1
owner: platform-team
compute:
  max_managed_instances: 1
`
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Region != "eu-west-1" || cfg.Owner != "platform-team" {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if cfg.Compute.MaxManagedInstances != 1 {
		t.Errorf("Expected MaxManagedInstances 1, got %d", cfg.Compute.MaxManagedInstances)
	}
	if cfg.Compute.MaxCount != 2 {
		t.Errorf("Unset keys must keep defaults, got MaxCount %d", cfg.Compute.MaxCount)
	}
}

func TestComputePolicy_ValidateRejects(t *testing.T) {
	p := DefaultComputePolicy()
	p.MaxCount = 0
	if err := p.Validate(); err == nil {
		t.Error("Expected invalid count range to be rejected")
	}
}

func TestLoad_RejectsWideningOverrides(t *testing.T) {
	cases := map[string]string{
		"max_count":     "compute:\n  max_count: 5\n",
		"max_managed":   "compute:\n  max_managed_instances: 10\n",
		"instance type": "compute:\n  allowed_instance_types: [t2.small, m5.large]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			v.SetConfigType("yaml")
			if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
				t.Fatalf("ReadConfig failed: %v", err)
			}
			_, err := Load(v)
			if !errors.Is(err, errs.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestLoad_EnvCannotRaiseQuota(t *testing.T) {
	t.Setenv("PLATFORM_CLI_COMPUTE_MAX_MANAGED_INSTANCES", "10")
	v := viper.New()
	v.SetEnvPrefix("PLATFORM_CLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if _, err := Load(v); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestLoad_RemapsImages(t *testing.T) {
	v := viper.New()
	v.Set("compute.images", map[string]string{"Ubuntu": "ami-123"})

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Compute.Images[ImageUbuntu] != "ami-123" {
		t.Errorf("Expected remapped ubuntu image, got %q", cfg.Compute.Images[ImageUbuntu])
	}
}
