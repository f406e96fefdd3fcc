package commands

import (
	"fmt"
	"net/url"

	"github.com/shopdesk-dev/shopdesk/internal/cli/userconfig"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var server string
	var sessionBackend string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure which Shopdesk server to use",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(server, sessionBackend)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server base URL, e.g. https://admin.example.com")
	cmd.Flags().StringVar(&sessionBackend, "session-backend", "", "Where to store the session: keyring (default) or file")

	return cmd
}

func runInit(server, sessionBackend string) error {
	if server == "" {
		return fmt.Errorf("server URL is required (use --server)")
	}

	parsed, err := url.Parse(server)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid server URL %q: expected a URL like https://admin.example.com", server)
	}

	if sessionBackend != "" && sessionBackend != "keyring" && sessionBackend != "file" {
		return fmt.Errorf("invalid session backend %q: must be 'keyring' or 'file'", sessionBackend)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	cfg.ServerURL = server
	if sessionBackend != "" {
		cfg.SessionBackend = sessionBackend
	}

	if err := userconfig.Save(cfg); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	configPath, _ := userconfig.GetConfigPath()
	fmt.Printf("✓ Configuration saved to %s\n", configPath)
	fmt.Printf("  Server: %s\n", server)

	return nil
}
