package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/handlink/internal/plugin"
)

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the plugin chain found in the plugin directory",
	}
	cmd.Flags().String("dir", "", "Plugin directory, overrides plugins.dir")
	cmd.Flags().Bool("json", false, "Output manifests in JSON format")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := cfg.Plugins.Dir
		if cmd.Flags().Changed("dir") {
			dir, _ = cmd.Flags().GetString("dir")
		}

		mgr := plugin.NewManager(dir)
		if err := mgr.Discover(); err != nil {
			return fmt.Errorf("failed to discover plugins in %s: %w", dir, err)
		}
		// Fails on manifests that would not load at run time.
		if _, err := mgr.Build(); err != nil {
			return err
		}

		list := mgr.List()
		out := cmd.OutOrStdout()

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			manifests := make([]plugin.Manifest, 0, len(list))
			for _, d := range list {
				manifests = append(manifests, d.Manifest)
			}
			data, err := json.MarshalIndent(manifests, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal manifests to JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(list) == 0 {
			fmt.Fprintf(out, "No plugins in %s\n", dir)
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tNAME\tTYPE\tSTATUS")
		for _, d := range list {
			status := "enabled"
			if d.Manifest.Disabled {
				status = "disabled"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.Manifest.Order, d.Manifest.Name, d.Manifest.Type, status)
		}
		return w.Flush()
	}
	return cmd
}
