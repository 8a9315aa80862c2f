package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/security/auth"
	"github.com/aryan0dhankhar/storefront/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage site owners",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new owner",
	RunE:  runUserCreate,
}

var userPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPromote,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered owners",
	RunE:  runUserList,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register a new owner with the admin role",
	RunE:  runCreateAdmin,
}

func init() {
	for _, c := range []*cobra.Command{userCreateCmd, createAdminCmd} {
		c.Flags().String("email", "", "email address (required)")
		c.Flags().String("username", "", "username (required)")
		c.Flags().String("password", "", "password, at least 8 characters (required)")
		c.MarkFlagRequired("email")
		c.MarkFlagRequired("username")
		c.MarkFlagRequired("password")
	}
	userCreateCmd.Flags().String("role", string(domain.RoleUser), "role: user or admin")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userPromoteCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(createAdminCmd)
}

func (e *env) accounts() *service.AccountService {
	tokens := auth.NewTokenManager(e.cfg.Auth.JWTSecret, e.cfg.Auth.Issuer)
	return service.NewAccountService(e.store.Users, tokens, e.cfg.Auth.TokenTTL, e.log)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	role, _ := cmd.Flags().GetString("role")
	return createUser(cmd, domain.Role(role))
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	return createUser(cmd, domain.RoleAdmin)
}

func createUser(cmd *cobra.Command, role domain.Role) error {
	email, _ := cmd.Flags().GetString("email")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.accounts().CreateUser(cmd.Context(), email, username, password, role)
	if err != nil {
		return err
	}
	return printUsers(cmd.OutOrStdout(), []*domain.User{user})
}

func runUserPromote(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.accounts().PromoteToAdmin(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printUsers(cmd.OutOrStdout(), []*domain.User{user})
}

func runUserList(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	users, err := e.store.Users.List(cmd.Context())
	if err != nil {
		return err
	}
	return printUsers(cmd.OutOrStdout(), users)
}

type userView struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

func printUsers(out io.Writer, users []*domain.User) error {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role})
	}
	if jsonOut {
		return printJSON(out, map[string]any{"users": views, "count": len(views)})
	}
	if len(views) == 0 {
		fmt.Fprintln(out, "No users found")
		return nil
	}

	w := newTable(out)
	printTableHeader(w, "ID", "EMAIL", "USERNAME", "ROLE")
	for _, u := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Username, u.Role)
	}
	return w.Flush()
}
