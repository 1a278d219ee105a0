package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handlink/internal/store"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded analytics sessions",
	}
	cmd.Flags().String("db", "", "Analytics SQLite path, overrides store.path")
	cmd.Flags().Int("limit", 20, "Maximum number of sessions to list, 0 for all")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Store.Path
		if cmd.Flags().Changed("db") {
			path, _ = cmd.Flags().GetString("db")
		}
		if path == "" {
			return errors.New("no analytics database configured, set store.path or --db")
		}
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := store.New(path)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		sessions, err := st.Sessions().List(limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tACTIONS\tPLUGINS")
		for _, s := range sessions {
			total, err := st.Counts().Total(s.ID)
			if err != nil {
				return err
			}
			duration := "running"
			if s.EndedAt != nil {
				duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.StartedAt.Format(time.RFC3339), duration, total, s.Plugins)
		}
		return w.Flush()
	}
	return cmd
}
