package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/minepack/internal/security"
	"github.com/codewithboateng/minepack/internal/storage"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an API user",
	Args:  cobra.NoArgs,
	RunE:  runUserAdd,
}

var userFlags struct {
	username string
	password string
	role     string
}

func init() {
	userCmd.AddCommand(userAddCmd)
	f := userAddCmd.Flags()
	f.StringVar(&userFlags.username, "username", "", "user name")
	f.StringVar(&userFlags.password, "password", "", "password")
	f.StringVar(&userFlags.role, "role", storage.RoleViewer, "role (admin|viewer)")
	_ = userAddCmd.MarkFlagRequired("username")
	_ = userAddCmd.MarkFlagRequired("password")
}

func runUserAdd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(userFlags.password)
	if err != nil {
		return err
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.CreateUser(userFlags.username, hash, userFlags.role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	_ = db.LogAudit(userFlags.username, "user:create", "", map[string]any{"id": id, "role": userFlags.role})
	fmt.Fprintf(cmd.OutOrStdout(), "User %s created (id %d, role %s)\n", userFlags.username, id, userFlags.role)
	return nil
}
