package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/platform-cli/pkg/engine/permissions"
)

func newPermissionsCmd(a *app) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Generate Least-Privilege IAM Policy",
		Long:  `Generates the AWS IAM JSON policy required to run the selected command groups.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonBytes, err := permissions.GeneratePolicy(only)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.printer.Writer(), string(jsonBytes))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "Command groups to include: compute, storage, dns (default all)")
	return cmd
}
