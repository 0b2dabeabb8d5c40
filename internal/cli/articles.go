package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/namgaylhamo24/quick-post-02240350/internal/client"
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Browse the article feed",
	Long: `List articles from the feed.

Examples:
  quickpost articles
  quickpost articles --tag go --page 2`,
	RunE: runArticles,
}

var (
	articlesTag     string
	articlesPage    int
	articlesPerPage int
)

func init() {
	articlesCmd.Flags().StringVarP(&articlesTag, "tag", "t", "", "Only articles with this tag")
	articlesCmd.Flags().IntVarP(&articlesPage, "page", "p", 1, "Page number")
	articlesCmd.Flags().IntVarP(&articlesPerPage, "per-page", "n", 20, "Articles per page")
}

func runArticles(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	articles, err := c.Articles(cmd.Context(), client.ArticleQuery{
		Tag:     articlesTag,
		Page:    articlesPage,
		PerPage: articlesPerPage,
	})
	if err != nil {
		return err
	}

	if len(articles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No articles found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tTAGS")
	for _, a := range articles {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, truncate(a.Title, 60), a.User.Name, strings.Join(a.TagList, ","))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
