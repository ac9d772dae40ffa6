package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"blog_ai_editor/markup"
	"blog_ai_editor/posts"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage stored posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		repo, release, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer release()

		list, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tTAGS\tUPDATED")
		for _, p := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Category,
				strings.Join(p.Tags, ","), p.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var (
	createTitle    string
	createCategory string
	createContent  string
	createFile     string
	createMarkdown bool
	createTags     []string
)

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post from markup or markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		content := createContent
		if createFile != "" {
			data, err := os.ReadFile(createFile)
			if err != nil {
				return err
			}
			content = string(data)
		}
		if createMarkdown || strings.HasSuffix(createFile, ".md") {
			html, err := markup.FromMarkdown(content)
			if err != nil {
				return err
			}
			content = html
		} else {
			content = markup.Normalize(content)
		}

		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		repo, release, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer release()

		p, err := repo.Create(cmd.Context(), posts.Post{
			Title:    createTitle,
			Category: createCategory,
			Content:  content,
			Tags:     createTags,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.ID)
		return nil
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a post as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		repo, release, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer release()

		p, err := repo.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func init() {
	postsCreateCmd.Flags().StringVar(&createTitle, "title", "", "post title")
	postsCreateCmd.Flags().StringVar(&createCategory, "category", "", "post category")
	postsCreateCmd.Flags().StringVar(&createContent, "content", "", "post content (markup)")
	postsCreateCmd.Flags().StringVar(&createFile, "file", "", "read content from a file (.md files are rendered)")
	postsCreateCmd.Flags().BoolVar(&createMarkdown, "markdown", false, "treat content as markdown")
	postsCreateCmd.Flags().StringSliceVar(&createTags, "tags", nil, "comma separated tags")
	_ = postsCreateCmd.MarkFlagRequired("title")

	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsCreateCmd)
	postsCmd.AddCommand(postsShowCmd)
}
