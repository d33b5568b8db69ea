package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/platform-cli/pkg/engine"
	"github.com/DrSkyle/platform-cli/pkg/engine/report"
)

func newComputeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compute",
		Aliases: []string{"ec2"},
		Short:   "Create, start/stop and list EC2 instances",
		Example: `  platform-cli compute create --name web --type t3.micro --ami ubuntu --count 2
  platform-cli compute manage --name web --action stop
  platform-cli compute list --output hcl`,
	}
	cmd.AddCommand(newComputeCreateCmd(a), newComputeManageCmd(a), newComputeListCmd(a))
	return cmd
}

func newComputeCreateCmd(a *app) *cobra.Command {
	var name, instanceType, ami string
	var count int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Launch 1 or 2 tagged instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "compute.create", func(ctx context.Context, eng *engine.Engine) error {
				instances, err := eng.Compute.Create(ctx, name, instanceType, ami, count)
				if err != nil {
					return err
				}
				a.printer.InstancesCreated(instances)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Instance Name tag")
	cmd.Flags().StringVar(&instanceType, "type", "", "Instance type (t2.small or t3.micro)")
	cmd.Flags().StringVar(&ami, "ami", "", "Image alias (amazon-linux or ubuntu)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of instances (1 or 2)")
	return cmd
}

func newComputeManageCmd(a *app) *cobra.Command {
	var name, action string

	cmd := &cobra.Command{
		Use:   "manage",
		Short: "Start or stop every managed instance with a given name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "compute.manage", func(ctx context.Context, eng *engine.Engine) error {
				res, err := eng.Compute.Manage(ctx, name, action)
				if err != nil {
					return err
				}
				a.printer.InstanceManaged(res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Instance Name tag")
	cmd.Flags().StringVar(&action, "action", "", "start or stop")
	return cmd
}

func newComputeListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instances created by this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			return a.run(cmd, "compute.list", func(ctx context.Context, eng *engine.Engine) error {
				instances, err := eng.Compute.List(ctx)
				if err != nil {
					return err
				}
				return a.write(format, instances, func() { a.printer.Instances(instances) }, report.InstanceImports(instances))
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}
