package permissions

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
)

type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

type Statement struct {
	Sid      string   `json:"Sid"`
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource string   `json:"Resource"`
}

// GeneratePolicy creates a least-privilege IAM policy for the given modules.
// An empty list selects every module.
func GeneratePolicy(modules []string) ([]byte, error) {
	desiredActions := make(map[string]bool)
	for _, perm := range CorePermissions() {
		desiredActions[perm] = true
	}

	if len(modules) == 0 {
		modules = Modules()
	}
	for _, mod := range modules {
		perms, ok := Catalog[strings.ToLower(strings.TrimSpace(mod))]
		if !ok {
			return nil, errs.Validation("Unknown module %q. Use %s.", mod, strings.Join(Modules(), ", "))
		}
		for _, p := range perms {
			desiredActions[p] = true
		}
	}

	actions := make([]string, 0, len(desiredActions))
	for a := range desiredActions {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	policy := PolicyDocument{
		Version: "2012-10-17",
		Statement: []Statement{
			{
				Sid:      "PlatformCLIManage",
				Effect:   "Allow",
				Action:   actions,
				Resource: "*",
			},
		},
	}

	return json.MarshalIndent(policy, "", "  ")
}
