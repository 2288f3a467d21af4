/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hirehub/apiserver/config"
	"github.com/hirehub/apiserver/internal/mail"
	"github.com/hirehub/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// mailerCmd represents the mailer command
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Drains the outbound-mail queue and delivers over SMTP",
	Long: `Drains the outbound-mail queue and delivers over SMTP. Usage:

	hirehub mailer
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := server.NewMailQueue(ctx, cfg.Mail)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect mail queue: %v\n", err)
			os.Exit(1)
		}
		defer queue.Close()

		worker := mail.NewWorker(queue, cfg.Mail.SMTP, cfg.Mail.From)
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "mailer error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
