// Command menuctl manages navigation menus through the menu API.
//
//	menuctl list header
//	menuctl create header Home /
//	menuctl drag header <id> 0
//
// The API base URL comes from --api-url, then MENU_API_URL (a .env file in
// the working directory is honored), then http://localhost:8080/api.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ghuser/bizdir/services/menu/client"
)

const defaultAPIURL = "http://localhost:8080/api"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	apiURL  string
	session string
}

func (o *rootOptions) client() *client.Client {
	var opts []client.Option
	if o.session != "" {
		opts = append(opts, client.WithSessionCookie(o.session))
	}
	return client.New(o.apiURL, opts...)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "menuctl",
		Short:        "Manage navigation menu items and their order",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("MENU_API_URL", defaultAPIURL), "menu API base URL")
	root.PersistentFlags().StringVar(&opts.session, "session", os.Getenv("MENU_SESSION"), "admin session cookie value")

	root.AddCommand(
		newBucketsCmd(opts),
		newListCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newMoveCmd(opts),
		newReorderCmd(opts),
		newDragCmd(opts),
	)
	return root
}

func newBucketsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "List the valid buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buckets, err := opts.client().Buckets(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range buckets {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <bucket>",
		Short: "List a bucket's items in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := opts.client().List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		target   string
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "create <bucket> <name> <url>",
		Short: "Append an item to a bucket",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			active := !inactive
			item, err := opts.client().Create(cmd.Context(), client.CreateRequest{
				Bucket:   args[0],
				Name:     args[1],
				URL:      args[2],
				Target:   target,
				IsActive: &active,
			})
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), []client.Item{item})
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "link target (_self or _blank)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the item hidden")
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		name, url, target string
		active            bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an item's name, url, target or visibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			var req client.UpdateRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("url") {
				req.URL = &url
			}
			if cmd.Flags().Changed("target") {
				req.Target = &target
			}
			if cmd.Flags().Changed("active") {
				req.IsActive = &active
			}
			item, err := opts.client().Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), []client.Item{item})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new label")
	cmd.Flags().StringVar(&url, "url", "", "new link")
	cmd.Flags().StringVar(&target, "target", "", "new link target (_self or _blank)")
	cmd.Flags().BoolVar(&active, "active", true, "show or hide the item")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			if err := opts.client().Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <bucket>",
		Short: "Move an item to the end of another bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			item, err := opts.client().Move(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), []client.Item{item})
		},
	}
}

func newReorderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <bucket> <id>...",
		Short: "Set a bucket's full order; every item must be listed exactly once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			c := opts.client()
			if err := c.Reorder(cmd.Context(), args[0], ids); err != nil {
				return err
			}
			return listBucket(cmd.Context(), cmd.OutOrStdout(), c, args[0])
		},
	}
}

func newDragCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drag <bucket> <id> <index>",
		Short: "Move one item to a new position within its bucket",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[1], err)
			}
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[2], err)
			}

			c := opts.client()
			session := client.NewDragSession(client.NewOptimisticCache(c), c)
			if err := session.PickUp(cmd.Context(), args[0], id); err != nil {
				return err
			}
			if err := session.MoveTo(index); err != nil {
				return err
			}
			if _, err := session.Drop(); err != nil {
				return err
			}
			if err := session.Commit(cmd.Context()); err != nil {
				return err
			}
			return listBucket(cmd.Context(), cmd.OutOrStdout(), c, args[0])
		},
	}
}

func listBucket(ctx context.Context, w io.Writer, c *client.Client, bucket string) error {
	items, err := c.List(ctx, bucket)
	if err != nil {
		return err
	}
	return printItems(w, items)
}

func printItems(w io.Writer, items []client.Item) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tID\tNAME\tURL\tTARGET\tACTIVE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n", it.Order, it.ID, it.Name, it.URL, it.Target, it.IsActive)
	}
	return tw.Flush()
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(args))
	for i, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", a, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
