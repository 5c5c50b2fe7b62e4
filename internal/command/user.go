package command

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/domain/validation"
	"github.com/geocoder89/courseapi/internal/security"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "manage users",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(userCreateCommand())
	return cmd
}

func userCreateCommand() *cobra.Command {
	var firstName, lastName, email string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "create a user; the password is read from COURSEAPI_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			password := os.Getenv("COURSEAPI_PASSWORD")

			u, err := user.New(user.CreateUserRequest{
				FirstName:    &firstName,
				LastName:     &lastName,
				EmailAddress: &email,
				Password:     &password,
			}, security.NewBcryptHasher(cfg.BcryptCost))
			if err != nil {
				return describe(err)
			}

			st, err := openStores(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := st.Users.Create(cmd.Context(), u); err != nil {
				return describe(err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address, used to sign in")

	return cmd
}

// describe turns validation outcomes into the same messages the API returns.
func describe(err error) error {
	var fieldErr *validation.FieldViolations
	if errors.As(err, &fieldErr) {
		return errors.New(strings.Join(fieldErr.Messages(), "; "))
	}
	var uniqueErr *validation.UniqueViolation
	if errors.As(err, &uniqueErr) {
		return errors.New(uniqueErr.Message)
	}
	return err
}
