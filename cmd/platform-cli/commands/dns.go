package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/platform-cli/pkg/engine"
	"github.com/DrSkyle/platform-cli/pkg/engine/report"
)

func newDNSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dns",
		Aliases: []string{"route53"},
		Short:   "Create hosted zones and manage their A-records",
		Example: `  platform-cli dns create-zone --domain example.com
  platform-cli dns manage-records --domain example.com --ip-address 203.0.113.10 --action create
  platform-cli dns list`,
	}
	cmd.AddCommand(newDNSCreateZoneCmd(a), newDNSManageRecordsCmd(a), newDNSListCmd(a))
	return cmd
}

func newDNSCreateZoneCmd(a *app) *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:     "create-zone",
		Aliases: []string{"create_zone"},
		Short:   "Create a tagged public hosted zone",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "dns.create-zone", func(ctx context.Context, eng *engine.Engine) error {
				res, err := eng.DNS.CreateZone(ctx, domain)
				if err != nil {
					return err
				}
				a.printer.ZoneCreated(res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Zone domain name")
	return cmd
}

func newDNSManageRecordsCmd(a *app) *cobra.Command {
	var domain, ip, action string

	cmd := &cobra.Command{
		Use:     "manage-records",
		Aliases: []string{"manage_records"},
		Short:   "Create, update or delete an A-record in a managed zone",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "dns.manage-records", func(ctx context.Context, eng *engine.Engine) error {
				res, err := eng.DNS.ManageRecord(ctx, domain, ip, action)
				if err != nil {
					return err
				}
				a.printer.RecordChanged(res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Hosted zone name (the A-record is written at the zone apex)")
	cmd.Flags().StringVar(&ip, "ip-address", "", "IPv4 address")
	cmd.Flags().StringVar(&action, "action", "", "create, update or delete")
	return cmd
}

func newDNSListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hosted zones created by this CLI with their records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			return a.run(cmd, "dns.list", func(ctx context.Context, eng *engine.Engine) error {
				listing, err := eng.DNS.ListZones(ctx)
				if err != nil {
					return err
				}
				return a.write(format, listing, func() { a.printer.Zones(listing) }, report.ZoneImports(listing))
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}
