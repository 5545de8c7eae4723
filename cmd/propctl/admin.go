package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"propsite/internal/auth"
	"propsite/internal/domain"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage the shared theme library",
	}
	cmd.AddCommand(themePutCmd())
	cmd.AddCommand(themeListCmd())
	return cmd
}

func themePutCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "put <name>",
		Short: "Add or replace a shared theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t domain.Theme
			if err := readJSONFile(file, &t); err != nil {
				return err
			}
			t.Name = args[0]
			if err := props.PutTheme(context.Background(), localSession(), t); err != nil {
				return err
			}
			fmt.Printf("theme %s saved\n", t.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Theme JSON file (- for stdin)")
	return cmd
}

func themeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shared themes with defaults applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			themes, err := queries.Themes(context.Background())
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(themes)
			}
			for _, t := range themes {
				fmt.Printf("%-16s %s / %s  radius %s\n", t.Name, t.Fonts.Heading.Family, t.Fonts.Body.Family, t.CornerRadius)
			}
			return nil
		},
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin users in users.json",
	}
	cmd.AddCommand(userAddCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	var name, role, password string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Add or replace an admin user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			switch r {
			case domain.RoleViewer, domain.RoleEditor, domain.RoleAdmin:
			default:
				return fmt.Errorf("role must be viewer, editor or admin")
			}
			if password == "" {
				fmt.Print("Password: ")
				b, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Println()
				if err != nil {
					return err
				}
				password = strings.TrimSpace(string(b))
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u := domain.User{Email: args[0], Name: name, Role: r, PasswordHash: hash}
			if err := storage.Files.PutUser(context.Background(), u); err != nil {
				return err
			}
			fmt.Printf("user %s (%s) saved\n", u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleEditor), "viewer, editor or admin")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")
	return cmd
}
