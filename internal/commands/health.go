package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	spin := newSpinner("Checking backend")
	spin.start()

	status, err := client.Health()
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Backend unreachable"))
		return fmt.Errorf("backend unreachable: %w", err)
	}
	spin.stopWithSuccess(fmt.Sprintf("Backend %s at %s", status.Status, client.BaseURL()))

	fmt.Printf("Status:    %s\n", status.Status)
	fmt.Printf("Database:  %s\n", status.Database)
	fmt.Printf("AI coach:  configured=%t\n", status.GeminiConfigured)
	return nil
}
