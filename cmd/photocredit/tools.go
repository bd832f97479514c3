package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/photocredit"
	"github.com/eringen/photocredit/credit"
)

var jsonldCmd = &cobra.Command{
	Use:   "jsonld <slug>",
	Short: "Print the ImageObject JSON-LD of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.CreditsEnabled() {
			return fmt.Errorf("image credits disabled: %s", app.CreditWarning())
		}
		out, err := app.PostJSONLD(args[0])
		if err != nil {
			return err
		}
		if out == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "no credited images (post not in a target category or tag, or images lack credit fields)")
			return nil
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(out), "", "  "); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), buf.String())
		return nil
	},
}

var scanFeatured int64

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "List the attachment ids a post body displays",
	Long: `Renders a Markdown post body (from a file or stdin) and prints the
attachment ids found in it, one per line, featured image first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		body, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		for _, id := range credit.ExtractImageIDs(app.RenderContent(string(body)), scanFeatured) {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the image credit settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Store.LoadSettings()
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change settings",
	Long: `Keys: target_categories, target_tags (comma-separated lists),
auto_generate_copyright, include_sitemap_data (booleans) and
default_license_page (absolute URL or empty).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Store.LoadSettings()
		if err != nil {
			return err
		}
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", arg)
			}
			if err := applySetting(&s, key, value); err != nil {
				return err
			}
		}
		return app.Store.SaveSettings(s)
	},
}

// applySetting sets one settings field from its command-line form.
func applySetting(s *credit.Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "target_categories":
		s.TargetCategories = photocredit.SplitList(value)
	case "target_tags":
		s.TargetTags = photocredit.SplitList(value)
	case "auto_generate_copyright", "include_sitemap_data":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if key == "auto_generate_copyright" {
			s.AutoGenerateCopyright = b
		} else {
			s.IncludeSitemapData = b
		}
	case "default_license_page":
		if value != "" && !credit.ValidURL(value) {
			return fmt.Errorf("default_license_page: %q is not an absolute URL", value)
		}
		s.DefaultLicensePage = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func init() {
	scanCmd.Flags().Int64Var(&scanFeatured, "featured", 0, "featured image id to list first")
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}
