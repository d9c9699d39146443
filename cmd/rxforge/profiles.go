package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	domainservices "github.com/reglet-dev/rxforge/internal/domain/services"
)

var listingFormats = []string{"table", "json", "yaml"}

func newProfilesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect profile families and versions",
	}
	cmd.AddCommand(newProfilesListCmd(root), newProfilesResolveCmd(root))
	return cmd
}

func newProfilesListCmd(root *rootOptions) *cobra.Command {
	var out OutputOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profile families",
		Long: `List every profile family with its declared versions, validity windows,
the catalog default and the version currently resolved, taking profile
toggles from the config file and environment into account.`,
		Example: `  rxforge profiles list
  rxforge profiles list --format json
  RXFORGE_PROFILES_WORKFLOW=1.3.0 rxforge profiles list`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return out.ValidateFlags(listingFormats)
		},
		RunE: withContainer(root, func(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
			w, closeFn, err := out.OpenWriter(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeFn() // Best-effort cleanup
			}()

			formatter, err := ctx.Container.FormatterFactory().CreateListing(out.Format, w, out.FormatterOptions())
			if err != nil {
				return err
			}
			return formatter.FormatFamilies(ctx.Container.ProfileService().List())
		}),
	}

	out.RegisterFlags(cmd, listingFormats)
	return cmd
}

func newProfilesResolveCmd(root *rootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "resolve <family>",
		Short: "Print the version a family resolves to",
		Example: `  rxforge profiles resolve workflow
  rxforge profiles resolve prescription --version 1.0.2`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(root, func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			v, err := ctx.Container.ProfileService().Resolve(dto.ResolveRequest{
				Family:  args[0],
				Version: version,
			})
			if err != nil {
				var unknown *domainservices.UnknownVersionError
				if errors.As(err, &unknown) {
					ctx.Logger.Debug("version not declared", "family", args[0], "source", unknown.Source)
				}
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return err
		}),
	}

	cmd.Flags().StringVar(&version, "version", "", "Explicit version to check against the catalog")
	return cmd
}
