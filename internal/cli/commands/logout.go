package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
	addSessionFileFlag(cmd)

	return cmd
}

func runLogout() error {
	svc, err := buildService()
	if err != nil {
		return err
	}

	if !svc.Store().State().Authenticated {
		fmt.Println("Not signed in.")
		return nil
	}

	svc.Logout()
	fmt.Println("✓ Signed out.")

	return nil
}
