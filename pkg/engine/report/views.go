package report

import (
	"fmt"
	"strings"

	awsengine "github.com/DrSkyle/platform-cli/pkg/engine/aws"
	"github.com/DrSkyle/platform-cli/pkg/engine/policy"
	"github.com/DrSkyle/platform-cli/pkg/ownership"
)

// InstancesCreated reports the ids returned by a launch.
func (p *Printer) InstancesCreated(instances []awsengine.Instance) {
	if len(instances) == 0 {
		p.Warn("The launch request returned no instances.")
		return
	}
	for _, inst := range instances {
		p.Success("Created EC2 instance: %s", inst.ID)
	}
}

// InstanceManaged reports a start/stop.
func (p *Printer) InstanceManaged(res *awsengine.ManageResult) {
	verb := "Started"
	if res.Action == policy.ActionStop {
		verb = "Stopped"
	}
	p.Success("%s instance(s) with name: %s", verb, res.Name)
}

// Instances renders the managed instance listing.
func (p *Printer) Instances(instances []awsengine.Instance) {
	if len(instances) == 0 {
		p.Warn("No EC2 instances found created by this CLI.")
		return
	}
	for _, inst := range instances {
		p.Info("Instance ID: %s, Type: %s, State: %s, Tags: %s", inst.ID, inst.Type, inst.State, FormatTags(inst.Tags))
	}
}

// BucketCreated reports both phases of a bucket creation.
func (p *Printer) BucketCreated(res *awsengine.BucketCreateResult) {
	p.Success("Created S3 bucket: %s with %s access", res.Name, res.Access)
	if !res.Tagged {
		p.Warn("Bucket %s was created but could not be tagged: %v", res.Name, res.TagErr)
		p.Warn("It will not be listed as created by this CLI until the CreatedBy and Owner tags are added.")
	}
}

// Uploading announces an upload before it starts.
func (p *Printer) Uploading(path, bucket string) {
	p.Info("Uploading %s to S3 bucket %s...", path, bucket)
}

// Uploaded reports a finished upload.
func (p *Printer) Uploaded(res *awsengine.UploadResult) {
	p.Success("Successfully uploaded %s to S3 bucket %s!", res.Key, res.Bucket)
}

// Buckets renders the managed bucket listing.
func (p *Printer) Buckets(l *awsengine.BucketListing) {
	switch {
	case l.Total == 0:
		p.Warn("No S3 buckets found.")
	case len(l.Managed) == 0:
		p.Warn("No S3 buckets created by this CLI were found.")
	default:
		p.Title("S3 Buckets:")
		for _, b := range l.Managed {
			p.Detail(" - %s (Owner: %s)", b.Name, b.Owner)
		}
	}
	if len(l.Unreadable) > 0 {
		names := make([]string, 0, len(l.Unreadable))
		for _, u := range l.Unreadable {
			names = append(names, u.Name)
		}
		p.Warn("Skipped %d bucket(s) whose tags could not be read: %s", len(names), strings.Join(names, ", "))
	}
}

// ZoneCreated reports both phases of a hosted zone creation.
func (p *Printer) ZoneCreated(res *awsengine.ZoneCreateResult) {
	p.Success("Hosted zone created: %s", res.ID)
	if len(res.NameServers) > 0 {
		p.Detail("   Name servers: %s", strings.Join(res.NameServers, ", "))
	}
	if !res.Tagged {
		p.Warn("Hosted zone %s was created but could not be tagged: %v", res.ID, res.TagErr)
		p.Warn("Its records cannot be managed by this CLI until the CreatedBy tag is added.")
	}
}

// RecordChanged reports an applied record change.
func (p *Printer) RecordChanged(res *awsengine.RecordChange) {
	p.Success("Record %s successful for %s -> %s", res.Action, res.Domain, res.IP)
}

// Zones renders the managed zones with their record sets.
func (p *Printer) Zones(l *awsengine.ZoneListing) {
	if len(l.Zones) == 0 {
		p.Warn("No hosted zones created by this CLI were found.")
		return
	}
	p.Title("Hosted Zones & Records:")
	for _, z := range l.Zones {
		p.Info("Domain: %s", z.Name)
		p.Detail("   ID: %s | Owner: %s", z.ID, z.Owner)
		p.Detail("   Records:")
		for _, r := range z.Records {
			p.Detail("     - %s [%s] -> %s (TTL: %s)", r.Name, r.Type, recordValue(r), recordTTL(r))
		}
	}
}

func recordValue(r awsengine.Record) string {
	switch {
	case len(r.Values) == 0:
		return "Alias/Special"
	case r.Alias:
		return "ALIAS " + r.Values[0]
	default:
		return strings.Join(r.Values, ", ")
	}
}

func recordTTL(r awsengine.Record) string {
	if r.TTL == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *r.TTL)
}

// FormatTags renders a tag set as {k: v, ...} in key order.
func FormatTags(t ownership.Tags) string {
	parts := make([]string, 0, len(t))
	for _, k := range t.Keys() {
		parts = append(parts, k+": "+t[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
