package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/photocredit"
)

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create a new site directory with a starter config",
	Args:  cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.OutOrStdout(), args[0])
	},
}

// runInit lays out dir with photocredit.yaml and an uploads directory.
func runInit(out io.Writer, dir string) error {
	cfgPath := filepath.Join(dir, "photocredit.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	secret, err := randomSecret()
	if err != nil {
		return err
	}
	site := photocredit.SiteConfig{
		Name:          toTitle(filepath.Base(filepath.Clean(dir))),
		SessionSecret: secret,
		StaticDir:     "public",
		DatabasePath:  "data/photocredit.db",
	}
	data, err := yaml.Marshal(site)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	for _, d := range []string{
		filepath.Join(dir, "public", "uploads"),
		filepath.Join(dir, "data"),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n\nNext steps:\n", cfgPath)
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  set admin_password in photocredit.yaml (or PHOTOCREDIT_ADMIN_PASSWORD)")
	fmt.Fprintln(out, "  photocredit serve")
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// toTitle converts "my-photo-blog" to "My Photo Blog".
func toTitle(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func init() {
	rootCmd.AddCommand(initCmd)
}
