package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/config"
	"github.com/miguelmarques1/church-web/pkg/db"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/server/store"
	gormstore "github.com/miguelmarques1/church-web/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a login user",
	Long: `Create a user that can log in with phone and password.

When --password is omitted a random password is generated and printed.

Example:
  churchctl user create --name "Ana Souza" --phone 11999990000 --role leader`,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		password, _ := cmd.Flags().GetString("password")

		user, generated, err := newUser(name, phone, email, role, password)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		database, err := db.Connect(ctx, db.Config{URL: cfg.DatabaseURL})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if err := gormstore.NewUsersStore(database).CreateUser(ctx, user); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Created user %d (%s, %s)\n", user.ID, user.Phone, user.Role)
		if generated != "" {
			fmt.Printf("Password: %s\n", generated)
		}
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("name", "", "Display name (required)")
	userCreateCmd.Flags().String("phone", "", "Login phone number (required)")
	userCreateCmd.Flags().String("email", "", "Email address")
	userCreateCmd.Flags().String("role", "member", "Role: member, leader, pastor or admin")
	userCreateCmd.Flags().String("password", "", "Password (default: generated)")
}

// newUser validates the flags and hashes the password. generated is the
// password when one had to be generated.
func newUser(name, phone, email, role, password string) (user *store.User, generated string, err error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, "", fmt.Errorf("--name is required")
	}
	if phone == "" {
		return nil, "", fmt.Errorf("--phone is required")
	}

	r, ok := permission.ParseRole(role)
	if !ok {
		return nil, "", fmt.Errorf("invalid role %q: must be one of %s", role, strings.Join(permission.RoleStrings(), ", "))
	}

	if password == "" {
		password, err = generatePassword()
		if err != nil {
			return nil, "", err
		}
		generated = password
	}

	hash, err := authn.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	return &store.User{
		Name:         name,
		Phone:        phone,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         r.String(),
	}, generated, nil
}

func generatePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
