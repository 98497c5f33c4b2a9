// Package main is a user management tool for the knowledge assistant.
// The API has no self-registration, so accounts are provisioned here.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/nsf-ai/knowledge-assistant/internal/config"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "userctl",
		Usage: "Manage knowledge assistant user accounts",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create a user account",
				Action: createCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Account role (admin or staff)",
						Value: model.RoleStaff,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List user accounts",
				Action: listCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a user account by id",
				Action:    deleteCommand,
				ArgsUsage: "<id>",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "userctl: %v\n", err)
		os.Exit(1)
	}
}

func openUserStore() (*store.UserStore, error) {
	cfg := config.Load()
	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return store.NewUserStore(db), nil
}

func createCommand(c *cli.Context) error {
	role := strings.ToLower(c.String("role"))
	if role != model.RoleAdmin && role != model.RoleStaff {
		return fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.String("password")), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users, err := openUserStore()
	if err != nil {
		return err
	}

	user := &model.User{
		Email:        c.String("email"),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := users.Create(context.Background(), user); err != nil {
		return err
	}

	fmt.Printf("created user %d (%s, %s)\n", user.ID, user.Email, user.Role)
	return nil
}

func listCommand(c *cli.Context) error {
	users, err := openUserStore()
	if err != nil {
		return err
	}

	all, err := users.List(context.Background())
	if err != nil {
		return err
	}

	for _, u := range all {
		status := "active"
		if !u.IsActive {
			status = "inactive"
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, status)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one user id")
	}

	var id uint
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &id); err != nil {
		return fmt.Errorf("invalid user id %q", c.Args().First())
	}

	users, err := openUserStore()
	if err != nil {
		return err
	}

	user, err := users.Get(context.Background(), id)
	if err != nil {
		return err
	}

	if err := users.Delete(context.Background(), user.ID); err != nil {
		return err
	}

	fmt.Printf("deleted user %d (%s)\n", user.ID, user.Email)
	return nil
}
