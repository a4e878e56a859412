// ABOUTME: Notification commands: inbox lists history, watch follows the live stream
// ABOUTME: Both read the acting user's notifications from the gateway

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/2389/cafofo/internal/client"
)

func printNotification(out io.Writer, n client.Notification) {
	faint.Fprintf(out, "%s ", formatWhen(n.CreatedAt))
	if n.Title != "" {
		bold.Fprintf(out, "%s: ", n.Title)
	}
	fmt.Fprintln(out, n.Body)
	if n.URL != "" {
		faint.Fprintf(out, "    %s\n", n.URL)
	}
}

func addInbox(topLevel *cobra.Command, ro *rootOptions) {
	var limit int

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show your recent notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.client.ListNotifications(cmd.Context(), a.me().ID, limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				faint.Fprintln(a.out, "no notifications")
				return nil
			}
			for _, n := range list {
				printNotification(a.out, n)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "how many to show")
	topLevel.AddCommand(cmd)
}

func addWatch(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow your notifications as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			me := a.me()
			cyan.Fprintf(a.out, "watching notifications for %s (ctrl-c to stop)\n", me.Name)
			return a.client.StreamNotifications(cmd.Context(), me.ID, func(n client.Notification) {
				printNotification(a.out, n)
			})
		},
	}
	topLevel.AddCommand(cmd)
}
