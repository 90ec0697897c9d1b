package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/portalnegocios/intake/internal/compose"
	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/mail"
	"github.com/portalnegocios/intake/internal/model"
)

var rootCmd = &cobra.Command{
	Use:   "mailcheck",
	Short: "Mail transport diagnostics for the consultation intake service",
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the configured mail transport is reachable",
	RunE:  runVerify,
}

var sendTestCmd = &cobra.Command{
	Use:   "send-test",
	Short: "Send a sample consultation notification to the configured inbox",
	RunE:  runSendTest,
}

var sendConfirmationCmd = &cobra.Command{
	Use:   "send-confirmation",
	Short: "Send a sample confirmation email to an arbitrary address",
	RunE:  runSendConfirmation,
}

var (
	confirmationTo   string
	confirmationName string
)

func init() {
	sendConfirmationCmd.Flags().StringVar(&confirmationTo, "to", "", "recipient address (required)")
	sendConfirmationCmd.Flags().StringVar(&confirmationName, "name", "Prueba", "recipient display name")
	cobra.CheckErr(sendConfirmationCmd.MarkFlagRequired("to"))

	rootCmd.AddCommand(verifyCmd, sendTestCmd, sendConfirmationCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config and builds the transport shared by all subcommands.
func setup() (*config.Config, *compose.Composer, mail.Sender, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, "console")

	sender, err := mail.New(context.Background(), cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize transport: %w", err)
	}

	return cfg, compose.New(cfg.Mail, time.Now), sender, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, _, sender, err := setup()
	if err != nil {
		return err
	}

	fmt.Printf("Verifying %s transport...\n", cfg.Mail.Provider)
	if err := sender.Verify(context.Background()); err != nil {
		return fmt.Errorf("transport verification failed: %w", err)
	}
	fmt.Println("Transport verified OK")
	return nil
}

func runSendTest(cmd *cobra.Command, args []string) error {
	cfg, composer, sender, err := setup()
	if err != nil {
		return err
	}
	if cfg.Mail.Recipient == "" && cfg.Mail.Provider != mail.ProviderSimulated {
		return fmt.Errorf("mail.recipient is not configured")
	}

	req := model.ConsultationRequest{
		FirstName: "Prueba",
		LastName:  "SMTP",
		Email:     cfg.Mail.FromAddress,
		Message:   fmt.Sprintf("Email de prueba enviado el %s.", time.Now().Format(time.RFC1123)),
	}

	res := sender.Deliver(context.Background(), composer.Notification(req))
	if !res.Success {
		return fmt.Errorf("test notification failed (%s): %w", res.ErrorKind, res.Err)
	}
	fmt.Printf("Test notification sent, message id %s\n", res.MessageID)
	return nil
}

func runSendConfirmation(cmd *cobra.Command, args []string) error {
	_, composer, sender, err := setup()
	if err != nil {
		return err
	}

	res := sender.Deliver(context.Background(), composer.Confirmation(confirmationTo, confirmationName))
	if !res.Success {
		return fmt.Errorf("confirmation failed (%s): %w", res.ErrorKind, res.Err)
	}
	fmt.Printf("Confirmation sent to %s, message id %s\n", confirmationTo, res.MessageID)
	return nil
}
