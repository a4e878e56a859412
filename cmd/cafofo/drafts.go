// ABOUTME: Draft cache commands: list kept drafts and discard them
// ABOUTME: Works offline; only the client config is read

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func addDrafts(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List drafts kept locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.loadConfig()
			if err != nil {
				return err
			}
			drafts, err := openDrafts(cfg)
			if err != nil {
				return err
			}
			list, err := drafts.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				faint.Fprintln(out, "no kept drafts")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "  OWNER\tDATE\tTITLE\tBASE\tKEPT")
			fmt.Fprintln(w, "  -----\t----\t-----\t----\t----")
			for _, e := range list {
				base := "new"
				if !e.Draft.IsNew() {
					base = fmt.Sprintf("v%d", e.Draft.Version)
				}
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", e.Draft.UserID, e.Draft.Date, e.Draft.Title, base, formatWhen(e.SavedAt))
			}
			return w.Flush()
		},
	}

	addDraftsDiscard(cmd, ro)
	topLevel.AddCommand(cmd)
}

func addDraftsDiscard(parent *cobra.Command, ro *rootOptions) {
	var user string

	cmd := &cobra.Command{
		Use:   "discard <date>",
		Short: "Drop a kept draft",
		Args:  exactDay,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := parseDay(args[0])
			cfg, err := ro.loadConfig()
			if err != nil {
				return err
			}
			if user == "" {
				user = cfg.Session.UserID
			}
			if user == "" {
				return errors.New("--user is required without session.user_id")
			}
			drafts, err := openDrafts(cfg)
			if err != nil {
				return err
			}
			if err := drafts.Delete(user, date); err != nil {
				return err
			}
			green.Fprintf(cmd.OutOrStdout(), "✓ discarded draft for %s %s\n", user, date)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "draft owner id (default: you)")
	parent.AddCommand(cmd)
}
