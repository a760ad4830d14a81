// cmd/tools/listings-cli/cmd_admin.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"listings-workers/pkg/registry"
)

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cache := &cobra.Command{
		Use:   "cache",
		Short: "Manage the listings response cache",
	}

	var (
		bf    backendFlags
		paths []string
	)
	invalidate := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop cached listings responses (all of them unless --path is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, release, err := bf.connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer release()

			if len(paths) > 0 {
				if err := client.InvalidatePath(cmd.Context(), paths...); err != nil {
					return fmt.Errorf("invalidate cache: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed cached responses for %d paths\n", len(paths))
				return nil
			}

			n, err := client.InvalidateCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("invalidate cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached responses\n", n)
			return nil
		},
	}
	bf.register(invalidate)
	invalidate.Flags().StringSliceVar(&paths, "path", nil, "Request path to drop, e.g. /listings?q=hotel (repeatable)")

	cache.AddCommand(invalidate)
	return cache
}

func newRegistryCmd(opts *rootOptions) *cobra.Command {
	reg := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the activity registry file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := r.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"valid":     true,
					"taskTypes": r.TaskTypes(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry valid: %d activities\n", len(r.Activities))
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "configs/activity-registry.json", "Path to registry file")

	reg.AddCommand(validate)
	return reg
}
