package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/platform-cli/pkg/engine"
	"github.com/DrSkyle/platform-cli/pkg/engine/report"
)

func newStorageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storage",
		Aliases: []string{"s3"},
		Short:   "Create, upload to and list S3 buckets",
		Example: `  platform-cli storage create --name team-assets --access private
  platform-cli storage upload --name team-assets --file-path ./report.pdf
  platform-cli storage list --output json`,
	}
	cmd.AddCommand(newStorageCreateCmd(a), newStorageUploadCmd(a), newStorageListCmd(a))
	return cmd
}

func newStorageCreateCmd(a *app) *cobra.Command {
	var name, access string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tagged bucket (public buckets ask for confirmation)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "storage.create", func(ctx context.Context, eng *engine.Engine) error {
				res, err := eng.Storage.Create(ctx, name, access)
				if err != nil {
					return err
				}
				a.printer.BucketCreated(res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Bucket name")
	cmd.Flags().StringVar(&access, "access", "", "private or public")
	return cmd
}

func newStorageUploadCmd(a *app) *cobra.Command {
	var name, filePath string

	cmd := &cobra.Command{
		Use:     "upload",
		Aliases: []string{"upload_file"},
		Short:   "Upload a local file to a bucket",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "storage.upload", func(ctx context.Context, eng *engine.Engine) error {
				a.printer.Uploading(filePath, name)
				res, err := eng.Storage.Upload(ctx, name, filePath)
				if err != nil {
					return err
				}
				a.printer.Uploaded(res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Bucket name")
	cmd.Flags().StringVar(&filePath, "file-path", "", "Local file to upload")
	return cmd
}

func newStorageListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List buckets created by this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			return a.run(cmd, "storage.list", func(ctx context.Context, eng *engine.Engine) error {
				listing, err := eng.Storage.List(ctx)
				if err != nil {
					return err
				}
				return a.write(format, listing, func() { a.printer.Buckets(listing) }, report.BucketImports(listing))
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}
