package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopdesk-dev/shopdesk/internal/cli/userconfig"
	"github.com/shopdesk-dev/shopdesk/internal/console"
	"github.com/shopdesk-dev/shopdesk/internal/session"
	"github.com/spf13/cobra"
)

// sessionFile is the --session-file override shared by all commands
var sessionFile string

// addSessionFileFlag registers the shared --session-file flag
func addSessionFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sessionFile, "session-file", "", "Store the session in this file instead of the OS keyring (or set SHOPDESK_SESSION_FILE)")
}

// resolveServerURL returns the server URL to talk to. SHOPDESK_SERVER takes
// precedence over the saved user config.
func resolveServerURL() (string, error) {
	if url := os.Getenv("SHOPDESK_SERVER"); url != "" {
		return url, nil
	}

	url, err := userconfig.GetServerURL()
	if err != nil {
		return "", fmt.Errorf("failed to load user config: %w", err)
	}
	if url == "" {
		return "", fmt.Errorf("no server configured. Run 'shopdesk init --server <url>' or set SHOPDESK_SERVER")
	}

	return url, nil
}

// resolveBackend picks where the session is persisted. The --session-file
// flag or SHOPDESK_SESSION_FILE forces a file backend at the given path,
// otherwise the user config decides between the OS keyring (default) and
// the default session file.
func resolveBackend() (session.Backend, error) {
	if sessionFile != "" {
		return session.NewFileBackend(sessionFile)
	}
	if path := os.Getenv("SHOPDESK_SESSION_FILE"); path != "" {
		return session.NewFileBackend(path)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if cfg.SessionBackend == "file" {
		path, err := session.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		return session.NewFileBackend(path)
	}

	return session.NewKeyringBackend(), nil
}

// buildService wires up the console service used by all commands.
func buildService() (*console.Service, error) {
	serverURL, err := resolveServerURL()
	if err != nil {
		return nil, err
	}

	backend, err := resolveBackend()
	if err != nil {
		return nil, err
	}

	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	store := session.New(backend, log)
	client := console.NewClient(serverURL, store)
	nav := console.NewLogNavigator(log, console.LoginRoute)

	return console.NewService(client, store, nav, log), nil
}
