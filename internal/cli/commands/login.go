package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/shopdesk-dev/shopdesk/internal/access"
	"github.com/shopdesk-dev/shopdesk/internal/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Shopdesk server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set SHOPDESK_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set SHOPDESK_PASSWORD, will prompt if not provided)")
	addSessionFileFlag(cmd)

	return cmd
}

func runLogin(ctx context.Context, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("SHOPDESK_EMAIL")
	}
	if password == "" {
		password = os.Getenv("SHOPDESK_PASSWORD")
	}

	// Validate email
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or SHOPDESK_EMAIL env var)")
	}

	svc, err := buildService()
	if err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or SHOPDESK_PASSWORD env var)")
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := svc.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %s", console.FailureMessage(err))
	}

	state := svc.Store().State()

	fmt.Println("✓ Login successful!")
	if state.User != nil {
		fmt.Printf("  User: %s (%s)\n", state.User.Name, state.User.Email)
		fmt.Printf("  Role: %s\n", state.User.Role)
	}

	caps := svc.Capabilities()
	if caps.Has(access.CapSuperAdmin) {
		fmt.Println("  Super admin access")
	}

	return nil
}
