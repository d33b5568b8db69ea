package permissions

import "sort"

// Module names accepted by GeneratePolicy.
const (
	ModuleCompute = "compute"
	ModuleStorage = "storage"
	ModuleDNS     = "dns"
)

// Catalog maps each command group to the IAM actions its workflows call.
var Catalog = map[string][]string{
	ModuleCompute: {
		"ec2:DescribeInstances",
		"ec2:RunInstances",
		"ec2:StartInstances",
		"ec2:StopInstances",
		"ec2:CreateTags", // tags are applied through TagSpecifications on launch
	},
	ModuleStorage: {
		"s3:CreateBucket",
		"s3:PutBucketAcl",
		"s3:PutBucketOwnershipControls",
		"s3:PutBucketTagging",
		"s3:GetBucketTagging",
		"s3:ListAllMyBuckets",
		"s3:PutObject",
	},
	ModuleDNS: {
		"route53:CreateHostedZone",
		"route53:ChangeTagsForResource",
		"route53:ListTagsForResource",
		"route53:ListHostedZones",
		"route53:ListHostedZonesByName",
		"route53:ListResourceRecordSets",
		"route53:ChangeResourceRecordSets",
	},
}

// Modules returns the catalog keys in order.
func Modules() []string {
	mods := make([]string, 0, len(Catalog))
	for m := range Catalog {
		mods = append(mods, m)
	}
	sort.Strings(mods)
	return mods
}

// CorePermissions are needed by every invocation that resolves the owner from STS.
func CorePermissions() []string {
	return []string{
		"sts:GetCallerIdentity",
	}
}
