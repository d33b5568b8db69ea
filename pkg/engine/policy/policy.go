package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DrSkyle/platform-cli/pkg/config"
	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
)

// Access levels accepted for buckets.
const (
	AccessPrivate = "private"
	AccessPublic  = "public"
)

// Instance actions.
const (
	ActionStart = "start"
	ActionStop  = "stop"
)

// Record change types.
const (
	RecordCreate = "CREATE"
	RecordUpsert = "UPSERT"
	RecordDelete = "DELETE"
)

// Validator checks operator input against the compute policy before any remote call.
type Validator struct {
	P config.ComputePolicy
}

func NewValidator(p config.ComputePolicy) *Validator {
	return &Validator{P: p}
}

// ResolveImage maps an image alias (case-insensitive) to its AMI id.
func (v *Validator) ResolveImage(alias string) (string, error) {
	ami, ok := v.P.Images[strings.ToLower(strings.TrimSpace(alias))]
	if !ok || alias == "" {
		return "", errs.Validation("Unsupported AMI specified. Use %s.", joinOr(v.imageAliases()))
	}
	return ami, nil
}

// CheckInstanceType verifies the type is whitelisted. The comparison is exact.
func (v *Validator) CheckInstanceType(instanceType string) error {
	for _, allowed := range v.P.AllowedInstanceTypes {
		if instanceType == allowed {
			return nil
		}
	}
	return errs.Validation("%s is not allowed. Use only %s", instanceType, joinOr(v.P.AllowedInstanceTypes))
}

// CheckCount enforces the per-request instance count range.
func (v *Validator) CheckCount(count int) error {
	if count < v.P.MinCount || count > v.P.MaxCount {
		return errs.Validation("You can create only %s instances at a time. You requested %d instances.",
			countRange(v.P.MinCount, v.P.MaxCount), count)
	}
	return nil
}

// CheckQuota refuses a create that would push managed instances over the cap.
func (v *Validator) CheckQuota(existing, requested int) error {
	if existing+requested > v.P.MaxManagedInstances {
		return errs.New(errs.ErrQuotaExceeded,
			"Limit reached! You have %d running instances, no more than %d running instances created by this CLI",
			existing, v.P.MaxManagedInstances)
	}
	return nil
}

// ParseAccess normalises a bucket access level.
func ParseAccess(access string) (string, error) {
	switch a := strings.ToLower(strings.TrimSpace(access)); a {
	case AccessPrivate, AccessPublic:
		return a, nil
	}
	return "", errs.Validation("Invalid access level. Use 'private' or 'public'.")
}

// ParseInstanceAction normalises start/stop.
func ParseInstanceAction(action string) (string, error) {
	switch a := strings.ToLower(strings.TrimSpace(action)); a {
	case ActionStart, ActionStop:
		return a, nil
	}
	return "", errs.Validation("Invalid action. Use 'start' or 'stop'.")
}

// ParseRecordAction normalises a record action to a change type. UPDATE maps to UPSERT.
func ParseRecordAction(action string) (string, error) {
	switch a := strings.ToUpper(strings.TrimSpace(action)); a {
	case RecordCreate, RecordUpsert, RecordDelete:
		return a, nil
	case "UPDATE":
		return RecordUpsert, nil
	}
	return "", errs.Validation("Invalid action. Use 'create', 'update', or 'delete'.")
}

func (v *Validator) imageAliases() []string {
	// Stable order: the two built-in aliases first, the rest sorted.
	var out []string
	for _, a := range []string{config.ImageAmazonLinux, config.ImageUbuntu} {
		if _, ok := v.P.Images[a]; ok {
			out = append(out, a)
		}
	}
	var extra []string
	for a := range v.P.Images {
		if a != config.ImageAmazonLinux && a != config.ImageUbuntu {
			extra = append(extra, a)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

func countRange(lo, hi int) string {
	if lo == hi {
		return fmt.Sprintf("%d", lo)
	}
	if hi == lo+1 {
		return fmt.Sprintf("%d or %d", lo, hi)
	}
	return fmt.Sprintf("%d to %d", lo, hi)
}
