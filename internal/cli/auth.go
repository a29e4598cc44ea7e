package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stepanpomazov/resource-management/internal/credential"
)

var authForget bool

var authCmd = &cobra.Command{
	Use:   "auth [webhook-url]",
	Short: "Store the REST webhook URL in the OS keyring",
	Long: `auth saves the webhook access path (which embeds a secret token) in
the system keyring so it stays out of the plain-text config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&authForget, "forget", false,
		"Remove the stored webhook URL instead")
}

func runAuth(cmd *cobra.Command, args []string) error {
	if authForget {
		if err := credential.Delete(credential.WebhookKey); err != nil {
			return err
		}
		fmt.Println("Webhook URL removed from keyring.")
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("usage: resreport auth <webhook-url>")
	}
	if err := credential.Set(credential.WebhookKey, args[0]); err != nil {
		return err
	}
	fmt.Println("Webhook URL stored in keyring.")
	return nil
}
