package report

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	awsengine "github.com/DrSkyle/platform-cli/pkg/engine/aws"
	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
)

// Format selects how list results are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// ParseFormat validates an --output value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatHCL:
		return f, nil
	}
	return "", errs.Validation("Invalid output format %q. Use text, json, yaml or hcl.", s)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// ImportTarget is one existing resource to adopt into Terraform state.
type ImportTarget struct {
	Type string // Terraform resource type, e.g. aws_instance
	Name string // preferred resource label, sanitised on write
	ID   string // provider import id
}

// WriteImports writes Terraform 1.5+ import blocks for targets. Labels are sanitised
// and made unique per resource type.
func WriteImports(w io.Writer, targets []ImportTarget) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	seen := make(map[string]int)

	for i, t := range targets {
		if i > 0 {
			body.AppendNewline()
		}
		label := resourceLabel(t.Name)
		key := t.Type + "." + label
		seen[key]++
		if n := seen[key]; n > 1 {
			label = fmt.Sprintf("%s_%d", label, n)
		}

		block := body.AppendNewBlock("import", nil).Body()
		block.SetAttributeTraversal("to", hcl.Traversal{
			hcl.TraverseRoot{Name: t.Type},
			hcl.TraverseAttr{Name: label},
		})
		block.SetAttributeValue("id", cty.StringVal(t.ID))
	}

	_, err := w.Write(hclwrite.Format(f.Bytes()))
	return err
}

var invalidLabelChars = regexp.MustCompile(`[^a-z0-9_-]+`)

func resourceLabel(name string) string {
	label := invalidLabelChars.ReplaceAllString(strings.ToLower(strings.TrimSuffix(name, ".")), "_")
	label = strings.Trim(label, "_")
	if label == "" {
		return "resource"
	}
	if label[0] >= '0' && label[0] <= '9' || label[0] == '-' {
		label = "r_" + label
	}
	return label
}

// InstanceImports maps instances to aws_instance imports, labelled by Name tag.
func InstanceImports(instances []awsengine.Instance) []ImportTarget {
	out := make([]ImportTarget, 0, len(instances))
	for _, inst := range instances {
		name := inst.Name()
		if name == "" {
			name = inst.ID
		}
		out = append(out, ImportTarget{Type: "aws_instance", Name: name, ID: inst.ID})
	}
	return out
}

// BucketImports maps managed buckets to aws_s3_bucket imports.
func BucketImports(l *awsengine.BucketListing) []ImportTarget {
	out := make([]ImportTarget, 0, len(l.Managed))
	for _, b := range l.Managed {
		out = append(out, ImportTarget{Type: "aws_s3_bucket", Name: b.Name, ID: b.Name})
	}
	return out
}

// ZoneImports maps managed zones and their A-records to Route53 imports.
func ZoneImports(l *awsengine.ZoneListing) []ImportTarget {
	var out []ImportTarget
	for _, z := range l.Zones {
		out = append(out, ImportTarget{Type: "aws_route53_zone", Name: z.Name, ID: z.ID})
		for _, r := range z.Records {
			if r.Type != "A" {
				continue
			}
			name := strings.TrimSuffix(r.Name, ".")
			out = append(out, ImportTarget{
				Type: "aws_route53_record",
				Name: name + "_" + r.Type,
				ID:   z.ID + "_" + name + "_" + r.Type,
			})
		}
	}
	return out
}
