package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/browser-automation/apitoken"
	"github.com/hairizuan-noorazman/browser-automation/logger"
)

var tokenName string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenName == "" {
			return fmt.Errorf("token name is required")
		}

		db, err := connectFromConfig()
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		defer sqlDB.Close()

		raw, hash, err := apitoken.GenerateToken()
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}

		store := apitoken.NewMySQLStore(db, logger.NewNopLogger())
		token := &apitoken.APIToken{
			Name:      tokenName,
			TokenHash: hash,
			Enabled:   true,
		}
		if err := store.Create(context.Background(), token); err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}

		// The raw token is only shown here. Only its hash is stored.
		fmt.Printf("token created: %s\n", token.Name)
		fmt.Printf("id:    %s\n", token.ID)
		fmt.Printf("token: %s\n", raw)
		return nil
	},
}

func init() {
	tokenCreateCmd.Flags().StringVarP(&tokenName, "name", "n", "", "name for the token")
	tokenCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	tokenCmd.AddCommand(tokenCreateCmd)
	rootCmd.AddCommand(tokenCmd)
}
