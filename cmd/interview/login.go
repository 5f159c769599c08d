package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/talentsift/interview-client/internal/api"
	"github.com/talentsift/interview-client/internal/authstore"
	"github.com/talentsift/interview-client/internal/config"
	"github.com/talentsift/interview-client/internal/logger"
	"github.com/talentsift/interview-client/internal/model"
)

var loginCmd = &cobra.Command{
	Use:   "login <interview-id>",
	Short: "Verify your access code for an interview",
	Long: "Exchanges your email and 6-character access code for a local authorization " +
		"record. The record expires after 24 hours; run login again if it does.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

		interviewID := args[0]
		client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log)
		store := authstore.New(cfg.AuthDir, log)

		email, code, err := promptCredentials()
		if err != nil {
			return err
		}

		req := model.VerifyAccessRequest{Email: email, AccessCode: code}
		if err := client.VerifyAccess(cmd.Context(), interviewID, req); err != nil {
			if api.IsCode(err, api.ErrInvalidAccessCode) {
				return fmt.Errorf("the access code was not accepted — check the invitation email")
			}
			return err
		}

		if err := store.Write(interviewID, email); err != nil {
			return err
		}

		fmt.Printf("Access verified. You have %s to start the interview:\n\n", authstore.TTL)
		fmt.Printf("  interview start %s\n", interviewID)
		return nil
	},
}

func promptCredentials() (email, code string, err error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, err = reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read email: %w", err)
	}
	email = strings.TrimSpace(email)

	// The access code is a credential: keep it off the terminal when one
	// is attached, fall back to plain reads when stdin is piped.
	fmt.Print("Access code: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("read access code: %w", err)
		}
		code = string(raw)
	} else {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("read access code: %w", err)
		}
		code = line
	}

	return email, strings.TrimSpace(code), nil
}
