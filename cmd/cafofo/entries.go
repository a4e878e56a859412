// ABOUTME: Journal entry commands: users, calendar, show, write, comment, lock, unlock, delete
// ABOUTME: Every mutation goes through the editor session so notifications follow the diff

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/2389/cafofo/internal/draftcache"
	"github.com/2389/cafofo/internal/editor"
	"github.com/2389/cafofo/internal/journal"
	"github.com/2389/cafofo/internal/resolver"
)

// entryOptions select whose page is acted on and unlock it if needed.
type entryOptions struct {
	user     string
	password string
}

func addEntryArgs(cmd *cobra.Command, eo *entryOptions, defaultUser string) {
	cmd.Flags().StringVarP(&eo.user, "user", "u", defaultUser, "page owner: me, other or a user id")
	cmd.Flags().StringVarP(&eo.password, "password", "p", "", "password for a protected page")
}

func exactDay(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("requires a date (YYYY-MM-DD, today or yesterday)")
	}
	_, err := parseDay(args[0])
	return err
}

func addUsers(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the people sharing the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			me := a.me()
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "  ID\tNAME\tARTICLE\t")
			fmt.Fprintln(w, "  --\t----\t-------\t")
			for _, u := range a.identity.Audience() {
				marker := ""
				if u.ID == me.ID {
					marker = "(you)"
				}
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", u.ID, u.Name, u.Pronoun, marker)
			}
			return w.Flush()
		},
	}
	topLevel.AddCommand(cmd)
}

func addCalendar(topLevel *cobra.Command, ro *rootOptions) {
	eo := &entryOptions{}
	var month string

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "List the days that have a page",
		Example: `
cafofo calendar
cafofo calendar --user other --month 2024-01
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			owner, err := a.owner(eo.user)
			if err != nil {
				return err
			}
			summaries, err := a.editor.Resolver().ListEntries(cmd.Context(), owner.ID)
			if err != nil {
				return err
			}

			byDate := resolver.ByDate(summaries)
			cyan.Fprintf(a.out, "%s's journal\n", owner.Name)
			shown := 0
			for _, s := range summaries {
				if month != "" && !strings.HasPrefix(s.Date.String(), month) {
					continue
				}
				lock := ""
				if byDate[s.Date].IsPasswordProtected {
					lock = yellow.Sprint(" [locked]")
				}
				fmt.Fprintf(a.out, "  %s%s\n", s.Date, lock)
				shown++
			}
			if shown == 0 {
				faint.Fprintln(a.out, "  no pages yet")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&eo.user, "user", "u", "me", "page owner: me, other or a user id")
	cmd.Flags().StringVar(&month, "month", "", "only show YYYY-MM")
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command, ro *rootOptions) {
	eo := &entryOptions{}

	cmd := &cobra.Command{
		Use:   "show <date>",
		Short: "Print a page",
		Example: `
cafofo show today
cafofo show 2024-01-15 --user other --password segredo
`,
		Args: exactDay,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := parseDay(args[0])
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			owner, err := a.owner(eo.user)
			if err != nil {
				return err
			}
			d, err := a.open(cmd.Context(), owner, date, eo.password)
			if err != nil {
				return err
			}
			printDraft(a.out, owner, d)
			return nil
		},
	}

	addEntryArgs(cmd, eo, "me")
	topLevel.AddCommand(cmd)
}

func printDraft(out io.Writer, owner journal.User, d journal.Draft) {
	if d.IsNew() {
		faint.Fprintf(out, "%s has no page for %s\n", owner.Name, d.Date)
		return
	}
	header := fmt.Sprintf("%s · %s", d.Date, owner.Name)
	if d.IsPasswordProtected {
		header += " [locked]"
	}
	cyan.Fprintln(out, header)
	if d.Title != "" {
		bold.Fprintln(out, d.Title)
	}
	fmt.Fprintln(out, d.Content)
	if d.Comment != "" {
		fmt.Fprintln(out)
		yellow.Fprint(out, "comment: ")
		fmt.Fprintln(out, d.Comment)
	}
	faint.Fprintf(out, "version %d\n", d.Version)
}

// writeOptions are the field flags of write.
type writeOptions struct {
	entryOptions
	title   string
	content string
	comment string
	keep    bool
	discard bool
}

func addWrite(topLevel *cobra.Command, ro *rootOptions) {
	wo := &writeOptions{}

	cmd := &cobra.Command{
		Use:   "write <date>",
		Short: "Create or edit a page",
		Long: `Create or edit a page. Only the fields given are changed.

A draft left by --keep or by a failed save is restored first. Pass --discard
to drop it instead. Use "--content -" to read the content from stdin.`,
		Example: `
cafofo write today --title "Dia bom" --content "<p>fomos à praia</p>"
cafofo write today --content - < page.html
cafofo write 2024-01-15 --title "rascunho" --keep
`,
		Args: exactDay,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := parseDay(args[0])
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			owner, err := a.owner(wo.user)
			if err != nil {
				return err
			}
			if _, err := a.open(cmd.Context(), owner, date, wo.password); err != nil {
				return err
			}

			drafts, err := openDrafts(a.cfg)
			if err != nil {
				return err
			}
			if err := restoreDraft(a, drafts, owner, date, wo.discard); err != nil {
				return err
			}

			edits := map[journal.Field]*string{
				journal.FieldTitle:   &wo.title,
				journal.FieldContent: &wo.content,
				journal.FieldComment: &wo.comment,
			}
			for field, value := range edits {
				if !cmd.Flags().Changed(string(field)) {
					continue
				}
				v := *value
				if field == journal.FieldContent && v == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("reading content: %w", err)
					}
					v = string(data)
				}
				if err := a.editor.Edit(field, v); err != nil {
					return err
				}
			}

			if wo.keep {
				d, err := a.editor.Draft()
				if err != nil {
					return err
				}
				if err := drafts.Put(d); err != nil {
					return err
				}
				green.Fprintf(a.out, "✓ draft kept for %s\n", date)
				return nil
			}

			return saveDraft(cmd.Context(), a, drafts, date)
		},
	}

	addEntryArgs(cmd, &wo.entryOptions, "me")
	cmd.Flags().StringVar(&wo.title, string(journal.FieldTitle), "", "page title")
	cmd.Flags().StringVar(&wo.content, string(journal.FieldContent), "", "page content (- reads stdin)")
	cmd.Flags().StringVar(&wo.comment, string(journal.FieldComment), "", "comment on the page")
	cmd.Flags().BoolVar(&wo.keep, "keep", false, "keep the draft locally instead of saving")
	cmd.Flags().BoolVar(&wo.discard, "discard", false, "drop a previously kept draft")
	topLevel.AddCommand(cmd)
}

// restoreDraft applies a cached draft for (owner, date) onto the open draft.
func restoreDraft(a *app, drafts *draftcache.Cache, owner journal.User, date journal.Date, discard bool) error {
	cached, err := drafts.Get(owner.ID, date)
	if errors.Is(err, draftcache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if discard {
		faint.Fprintf(a.out, "  discarded draft from %s\n", formatWhen(cached.SavedAt))
		return drafts.Delete(owner.ID, date)
	}
	if err := a.editor.Restore(cached.Draft); err != nil {
		if errors.Is(err, journal.ErrConflict) {
			return fmt.Errorf("kept draft for %s no longer matches the saved page; rerun with --discard", date)
		}
		return err
	}
	faint.Fprintf(a.out, "  restored draft from %s\n", formatWhen(cached.SavedAt))
	return nil
}

// saveDraft persists the open draft. On failure the draft goes to the cache
// so the next write can pick it up.
func saveDraft(ctx context.Context, a *app, drafts *draftcache.Cache, date journal.Date) error {
	if !a.editor.Dirty() {
		faint.Fprintln(a.out, "nothing to save")
		return nil
	}
	d, err := a.editor.Draft()
	if err != nil {
		return err
	}

	saved, err := a.editor.Save(ctx)
	if err != nil {
		if perr := drafts.Put(d); perr != nil {
			a.logger.Warn("could not keep draft", "error", perr)
			return err
		}
		return fmt.Errorf("%w (draft kept in %s)", err, drafts.BasePath())
	}
	if err := drafts.Delete(d.UserID, date); err != nil {
		a.logger.Warn("could not drop kept draft", "error", err)
	}

	green.Fprintf(a.out, "✓ saved %s (version %d)\n", saved.Date, saved.Version)
	a.reportNotifications()
	return nil
}

func addComment(topLevel *cobra.Command, ro *rootOptions) {
	eo := &entryOptions{}

	cmd := &cobra.Command{
		Use:   "comment <date> <text...>",
		Short: "Comment on a page (the other person's by default)",
		Example: `
cafofo comment today que lindo dia
cafofo comment 2024-01-15 --user me lembrete
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("requires a date and a comment")
			}
			return exactDay(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := parseDay(args[0])
			text := strings.Join(args[1:], " ")

			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			owner, err := a.owner(eo.user)
			if err != nil {
				return err
			}
			if _, err := a.open(cmd.Context(), owner, date, eo.password); err != nil {
				return err
			}
			if err := a.editor.Edit(journal.FieldComment, text); err != nil {
				return err
			}

			drafts, err := openDrafts(a.cfg)
			if err != nil {
				return err
			}
			return saveDraft(cmd.Context(), a, drafts, date)
		},
	}

	addEntryArgs(cmd, eo, "other")
	topLevel.AddCommand(cmd)
}

func addLock(topLevel *cobra.Command, ro *rootOptions) {
	eo := &entryOptions{}

	cmd := &cobra.Command{
		Use:   "lock <date> <new-password>",
		Short: "Protect a page with a password",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a date and a password")
			}
			return exactDay(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := parseDay(args[0])
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			owner, err := a.owner(eo.user)
			if err != nil {
				return err
			}
			if _, err := a.open(cmd.Context(), owner, date, eo.password); err != nil {
				return err
			}
			saved, err := a.editor.Lock(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			green.Fprintf(a.out, "✓ locked %s (version %d)\n", saved.Date, saved.Version)
			a.reportNotifications()
			return nil
		},
	}

	addEntryArgs(cmd, eo, "me")
	topLevel.AddCommand(cmd)
}

func addUnlock(topLevel *cobra.Command, ro *rootOptions) {
	eo := &entryOptions{}

	cmd := &cobra.Command{
		Use:   "unlock <date>",
		Short: "Remove password protection from a page",
		Example: `
cafofo unlock 2024-01-15 --password segredo
`,
		Args: exactDay,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := parseDay(args[0])
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			owner, err := a.owner(eo.user)
			if err != nil {
				return err
			}
			if _, err := a.open(cmd.Context(), owner, date, eo.password); err != nil {
				return err
			}
			saved, err := a.editor.Unlock(cmd.Context())
			if err != nil {
				return err
			}
			green.Fprintf(a.out, "✓ unlocked %s (version %d)\n", saved.Date, saved.Version)
			a.reportNotifications()
			return nil
		},
	}

	addEntryArgs(cmd, eo, "me")
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, ro *rootOptions) {
	eo := &entryOptions{}

	cmd := &cobra.Command{
		Use:     "delete <date>",
		Aliases: []string{"rm"},
		Short:   "Delete a page",
		Args:    exactDay,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := parseDay(args[0])
			a, err := ro.connect(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			owner, err := a.owner(eo.user)
			if err != nil {
				return err
			}

			// A protected page can be deleted from its challenge
			if _, err := a.editor.Open(cmd.Context(), owner.ID, date); err != nil && !errors.Is(err, editor.ErrLocked) {
				return err
			}
			if st := a.editor.Status(); st.EntryID == "" {
				faint.Fprintf(a.out, "%s has no page for %s\n", owner.Name, date)
				return nil
			}
			if err := a.editor.Delete(cmd.Context()); err != nil {
				return err
			}
			green.Fprintf(a.out, "✓ deleted %s\n", date)
			return nil
		},
	}

	cmd.Flags().StringVarP(&eo.user, "user", "u", "me", "page owner: me, other or a user id")
	topLevel.AddCommand(cmd)
}
