package main

import (
	"fmt"
	"os"
	"strings"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/infra/repository"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/pkg/password"

	"github.com/spf13/cobra"
)

const passwordEnv = "GARAGECTL_PASSWORD"

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage operator and admin accounts",
	}
	cmd.AddCommand(usersAddCmd())
	return cmd
}

func usersAddCmd() *cobra.Command {
	var (
		name  string
		email string
		role  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account that can log in to the admin API",
		Long: `Creates an operator or admin account. The password is read from
` + passwordEnv + ` so it does not end up in shell history.

Example:
  ` + passwordEnv + `=s3cret-pass garagectl users add --email ops@garage.test --role operator`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			staff, err := newStaff(name, email, role, os.Getenv(passwordEnv))
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			pool, closePool, err := e.postgres()
			if err != nil {
				return err
			}
			defer closePool()

			err = repository.NewUserRepository(pool).Create(cmd.Context(), staff)
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Newf("an account for %s already exists", *staff.Email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", staff.Role, *staff.Email, staff.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the email local part")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&role, "role", string(user.RoleOperator), "operator or admin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// newStaff validates the flags and hashes the password. Drivers register
// through the walk-in flow, so they cannot be created here.
func newStaff(name, email, role, plain string) (*user.User, error) {
	addr, err := user.NewEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, errs.Wrap(err, "email")
	}
	r, err := user.NewRole(role)
	if err != nil || r == user.RoleDriver {
		return nil, errs.Newf("role must be %s or %s", user.RoleOperator, user.RoleAdmin)
	}
	if plain == "" {
		return nil, errs.Newf("%s is not set", passwordEnv)
	}
	hash, err := password.Hash(plain, 0)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name, _, _ = strings.Cut(addr.Value(), "@")
	}
	return user.NewStaff(name, addr, hash, r), nil
}
