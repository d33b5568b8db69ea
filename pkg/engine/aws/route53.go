package aws

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
	"github.com/DrSkyle/platform-cli/pkg/engine/policy"
	"github.com/DrSkyle/platform-cli/pkg/ownership"
)

// Route53API is the subset of the Route53 client used by DNSManager.
type Route53API interface {
	CreateHostedZone(ctx context.Context, params *route53.CreateHostedZoneInput, optFns ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error)
	ChangeTagsForResource(ctx context.Context, params *route53.ChangeTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ChangeTagsForResourceOutput, error)
	ListHostedZonesByName(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error)
	ListTagsForResource(ctx context.Context, params *route53.ListTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ListTagsForResourceOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
	ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
}

// RecordTTL is the TTL of every A-record written by DNSManager.
const RecordTTL int64 = 300

// ZoneCreateResult reports both phases of a hosted zone creation.
type ZoneCreateResult struct {
	ID          string
	Domain      string
	NameServers []string
	Tagged      bool
	TagErr      error
}

// RecordChange describes an applied A-record change.
type RecordChange struct {
	ZoneID   string
	Domain   string
	IP       string
	Action   string
	ChangeID string
	Status   string
}

// Record is one record set of a managed zone. TTL is nil for alias records.
type Record struct {
	Name   string   `json:"name" yaml:"name"`
	Type   string   `json:"type" yaml:"type"`
	Values []string `json:"values" yaml:"values"`
	Alias  bool     `json:"alias,omitempty" yaml:"alias,omitempty"`
	TTL    *int64   `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// Zone is a managed hosted zone with its record sets.
type Zone struct {
	ID      string         `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	Owner   string         `json:"owner" yaml:"owner"`
	Tags    ownership.Tags `json:"tags" yaml:"tags"`
	Records []Record       `json:"records" yaml:"records"`
}

// ZoneListing is the result of ListZones. Total counts every zone in the account.
type ZoneListing struct {
	Total int    `json:"total" yaml:"total"`
	Zones []Zone `json:"zones" yaml:"zones"`
}

// DNSManager creates hosted zones and changes A-records in zones tagged as managed.
type DNSManager struct {
	Client Route53API
	Guard  *policy.Guard
	Owner  ownership.OwnerFunc
	Logger *slog.Logger
}

func NewDNSManager(client Route53API, guard *policy.Guard, owner ownership.OwnerFunc, logger *slog.Logger) *DNSManager {
	return &DNSManager{
		Client: client,
		Guard:  guard,
		Owner:  owner,
		Logger: loggerOrDefault(logger),
	}
}

// CreateZone creates a public hosted zone for domain and then tags it.
func (m *DNSManager) CreateZone(ctx context.Context, domain string) (_ *ZoneCreateResult, err error) {
	ctx, span := startSpan(ctx, "dns.create_zone", attribute.String("zone.domain", domain))
	defer func() { finishSpan(span, err) }()

	if strings.TrimSpace(domain) == "" {
		return nil, errs.Validation("Domain is required.")
	}

	if err := m.Guard.Check(ctx, policy.Request{Kind: "zone", Operation: "create", Name: domain}); err != nil {
		return nil, err
	}

	owner, err := resolveOwner(ctx, m.Owner)
	if err != nil {
		return nil, err
	}

	m.Logger.Debug("Creating hosted zone", "domain", domain)
	out, err := m.Client.CreateHostedZone(ctx, &route53.CreateHostedZoneInput{
		Name:            aws.String(domain),
		CallerReference: aws.String(domain),
		HostedZoneConfig: &types.HostedZoneConfig{
			Comment:     aws.String("Hosted zone for " + domain),
			PrivateZone: false,
		},
	})
	if err != nil {
		return nil, errs.Remote("CreateHostedZone", err)
	}

	res := &ZoneCreateResult{Domain: domain, Tagged: true}
	if out.HostedZone != nil {
		res.ID = aws.ToString(out.HostedZone.Id)
	}
	if out.DelegationSet != nil {
		res.NameServers = out.DelegationSet.NameServers
	}

	_, err = m.Client.ChangeTagsForResource(ctx, &route53.ChangeTagsForResourceInput{
		ResourceType: types.TagResourceTypeHostedzone,
		ResourceId:   aws.String(shortZoneID(res.ID)),
		AddTags:      ownership.New(domain, owner).Route53(),
	})
	if err != nil {
		res.Tagged = false
		res.TagErr = errs.Remote("ChangeTagsForResource", err)
		span.SetAttributes(attribute.Bool("zone.untagged", true))
		m.Logger.Warn("Hosted zone created but not tagged", "zone_id", res.ID, "error", res.TagErr)
	}
	return res, nil
}

// ManageRecord applies a CREATE, UPSERT or DELETE of the A-record domain -> ip.
// The zone ownership is checked before the action is validated.
func (m *DNSManager) ManageRecord(ctx context.Context, domain, ip, action string) (_ *RecordChange, err error) {
	ctx, span := startSpan(ctx, "dns.manage_record",
		attribute.String("zone.domain", domain),
		attribute.String("record.action", action))
	defer func() { finishSpan(span, err) }()

	if strings.TrimSpace(domain) == "" {
		return nil, errs.Validation("Domain is required.")
	}

	zoneID, err := m.findZone(ctx, domain)
	if err != nil {
		return nil, err
	}

	tags, err := m.zoneTags(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if !ownership.IsManaged(tags) {
		return nil, errs.AccessDenied("Access Denied: Zone %s was not created by this CLI.", domain)
	}

	changeType, err := policy.ParseRecordAction(action)
	if err != nil {
		return nil, err
	}
	addr, perr := netip.ParseAddr(strings.TrimSpace(ip))
	if perr != nil || !addr.Is4() {
		return nil, errs.Validation("Invalid IP address: %s. Use an IPv4 address.", ip)
	}

	if err := m.Guard.Check(ctx, policy.Request{
		Kind:      "record",
		Operation: changeType,
		Name:      domain,
		Tags:      tags,
		Props:     map[string]any{"ip": addr.String(), "zone_id": zoneID},
	}); err != nil {
		return nil, err
	}

	m.Logger.Debug("Changing record", "zone_id", zoneID, "domain", domain, "ip", addr.String(), "action", changeType)
	out, err := m.Client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{{
				Action: types.ChangeAction(changeType),
				ResourceRecordSet: &types.ResourceRecordSet{
					Name:            aws.String(domain),
					Type:            types.RRTypeA,
					TTL:             aws.Int64(RecordTTL),
					ResourceRecords: []types.ResourceRecord{{Value: aws.String(addr.String())}},
				},
			}},
		},
	})
	if err != nil {
		return nil, errs.Remote("ChangeResourceRecordSets", err)
	}

	res := &RecordChange{ZoneID: zoneID, Domain: domain, IP: addr.String(), Action: changeType}
	if out.ChangeInfo != nil {
		res.ChangeID = aws.ToString(out.ChangeInfo.Id)
		res.Status = string(out.ChangeInfo.Status)
	}
	return res, nil
}

// findZone resolves domain to a zone id. The lookup is prefix based, so the first
// returned zone must match the domain exactly.
func (m *DNSManager) findZone(ctx context.Context, domain string) (string, error) {
	out, err := m.Client.ListHostedZonesByName(ctx, &route53.ListHostedZonesByNameInput{
		DNSName: aws.String(domain),
	})
	if err != nil {
		return "", errs.Remote("ListHostedZonesByName", err)
	}
	if len(out.HostedZones) == 0 || normalizeDomain(aws.ToString(out.HostedZones[0].Name)) != normalizeDomain(domain) {
		return "", errs.NotFound("No hosted zone found for: %s", domain)
	}
	return shortZoneID(aws.ToString(out.HostedZones[0].Id)), nil
}

func (m *DNSManager) zoneTags(ctx context.Context, zoneID string) (ownership.Tags, error) {
	out, err := m.Client.ListTagsForResource(ctx, &route53.ListTagsForResourceInput{
		ResourceType: types.TagResourceTypeHostedzone,
		ResourceId:   aws.String(zoneID),
	})
	if err != nil {
		return nil, errs.Remote("ListTagsForResource", err)
	}
	if out.ResourceTagSet == nil {
		return ownership.Tags{}, nil
	}
	return ownership.FromRoute53(out.ResourceTagSet.Tags), nil
}

// ListZones reports every managed zone with its record sets. Unmanaged zones are skipped.
func (m *DNSManager) ListZones(ctx context.Context) (_ *ZoneListing, err error) {
	ctx, span := startSpan(ctx, "dns.list")
	defer func() { finishSpan(span, err) }()

	out, err := m.Client.ListHostedZones(ctx, &route53.ListHostedZonesInput{})
	if err != nil {
		return nil, errs.Remote("ListHostedZones", err)
	}

	listing := &ZoneListing{Total: len(out.HostedZones)}
	for _, hz := range out.HostedZones {
		fullID := aws.ToString(hz.Id)
		id := shortZoneID(fullID)

		tags, err := m.zoneTags(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ownership.IsManaged(tags) {
			continue
		}

		records, err := m.records(ctx, fullID)
		if err != nil {
			return nil, err
		}
		listing.Zones = append(listing.Zones, Zone{
			ID:      id,
			Name:    aws.ToString(hz.Name),
			Owner:   tags.Owner(),
			Tags:    tags,
			Records: records,
		})
	}
	span.SetAttributes(
		attribute.Int("zone.total", listing.Total),
		attribute.Int("zone.managed", len(listing.Zones)))
	return listing, nil
}

func (m *DNSManager) records(ctx context.Context, zoneID string) ([]Record, error) {
	out, err := m.Client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
	})
	if err != nil {
		return nil, errs.Remote("ListResourceRecordSets", err)
	}

	records := make([]Record, 0, len(out.ResourceRecordSets))
	for _, rs := range out.ResourceRecordSets {
		r := Record{
			Name: aws.ToString(rs.Name),
			Type: string(rs.Type),
			TTL:  rs.TTL,
		}
		for _, rr := range rs.ResourceRecords {
			if v := aws.ToString(rr.Value); v != "" {
				r.Values = append(r.Values, v)
			}
		}
		if len(r.Values) == 0 && rs.AliasTarget != nil {
			r.Alias = true
			r.Values = []string{aws.ToString(rs.AliasTarget.DNSName)}
		}
		records = append(records, r)
	}
	return records, nil
}

// shortZoneID strips the "/hostedzone/" prefix Route53 returns in zone ids.
func shortZoneID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func normalizeDomain(d string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
}
