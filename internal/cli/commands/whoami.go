package commands

import (
	"context"
	"fmt"

	"github.com/shopdesk-dev/shopdesk/internal/access"
	"github.com/shopdesk-dev/shopdesk/internal/console"
	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the latest profile from the server instead of the local session")
	addSessionFileFlag(cmd)

	return cmd
}

func runWhoami(ctx context.Context, refresh bool) error {
	svc, err := buildService()
	if err != nil {
		return err
	}

	state := svc.Store().State()
	if !state.Authenticated {
		fmt.Println("Not signed in. Run 'shopdesk login' first.")
		return nil
	}

	user := state.User
	if refresh {
		if ctx == nil {
			ctx = context.Background()
		}
		fetched, err := svc.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("failed to refresh profile: %s", console.FailureMessage(err))
		}
		user = fetched
	}
	fmt.Printf("User:  %s (%s)\n", user.Name, user.Email)
	fmt.Printf("Role:  %s\n", user.Role)
	if !user.IsActive {
		fmt.Println("Note:  account is deactivated")
	}

	caps := svc.Capabilities()
	fmt.Println("Capabilities:")
	for _, cap := range access.All() {
		mark := " "
		if caps.Has(cap) {
			mark = "✓"
		}
		fmt.Printf("  [%s] %s\n", mark, cap)
	}

	return nil
}
