package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/namgaylhamo24/quick-post-02240350/internal/client"
)

var bookmarksCmd = &cobra.Command{
	Use:     "bookmarks",
	Aliases: []string{"bm"},
	Short:   "Manage your bookmarks",
	RunE:    runBookmarksList,
}

var bookmarksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bookmarks, newest first",
	RunE:    runBookmarksList,
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add [article-id]",
	Short: "Bookmark an article from the feed",
	Long: `Bookmark an article. The article is looked up on the given feed page.

Examples:
  quickpost bookmarks add 1234567
  quickpost bookmarks add 1234567 --tag go --page 3`,
	Args: cobra.ExactArgs(1),
	RunE: runBookmarksAdd,
}

var bookmarksRmCmd = &cobra.Command{
	Use:     "rm [article-id]",
	Aliases: []string{"delete"},
	Short:   "Remove a bookmark",
	Args:    cobra.ExactArgs(1),
	RunE:    runBookmarksRm,
}

var (
	addTag     string
	addPage    int
	addPerPage int
)

func init() {
	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksCmd.AddCommand(bookmarksAddCmd)
	bookmarksCmd.AddCommand(bookmarksRmCmd)

	bookmarksAddCmd.Flags().StringVarP(&addTag, "tag", "t", "", "Feed tag to search")
	bookmarksAddCmd.Flags().IntVarP(&addPage, "page", "p", 1, "Feed page to search")
	bookmarksAddCmd.Flags().IntVarP(&addPerPage, "per-page", "n", 100, "Feed page size to search")
}

func runBookmarksList(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	list, err := c.Bookmarks(cmd.Context())
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ARTICLE\tTITLE\tAUTHOR\tSAVED")
	for _, b := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ArticleID, truncate(b.Title, 60), b.Author, b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runBookmarksAdd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return fmt.Errorf("article id must be a number: %q", args[0])
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	if !c.IsLoggedIn() {
		return client.ErrNotLoggedIn
	}

	articles, err := c.Articles(cmd.Context(), client.ArticleQuery{Tag: addTag, Page: addPage, PerPage: addPerPage})
	if err != nil {
		return err
	}

	for _, a := range articles {
		if a.ID != id {
			continue
		}
		b, err := c.AddBookmark(cmd.Context(), client.BookmarkFromArticle(a))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Bookmarked %q\n", b.Title)
		return nil
	}

	return fmt.Errorf("article %d not found on feed page %d", id, addPage)
}

func runBookmarksRm(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	if err := c.RemoveBookmark(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Removed bookmark %s\n", args[0])
	return nil
}
