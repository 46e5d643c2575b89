package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/webblog/internal/auth"
	"github.com/yourusername/webblog/internal/db"
	"github.com/yourusername/webblog/internal/page"
	"github.com/yourusername/webblog/internal/storage"
	"github.com/yourusername/webblog/internal/users"
)

func newUserCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "ユーザーを管理します",
	}
	cmd.AddCommand(newUserCreateCommand(rt))
	cmd.AddCommand(newUserAdminCommand(rt, "promote", "管理者権限を付与します", true))
	cmd.AddCommand(newUserAdminCommand(rt, "demote", "管理者権限を外します", false))
	cmd.AddCommand(newUserListCommand(rt))
	return cmd
}

func newUserCreateCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "ユーザーを作成します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			admin, _ := cmd.Flags().GetBool("admin")

			email = auth.NormalizeEmail(email)
			name = strings.TrimSpace(name)
			switch {
			case !auth.ValidEmail(email):
				return fmt.Errorf("invalid email: %q", email)
			case name == "":
				return errors.New("--name is required")
			case password == "":
				return errors.New("--password is required")
			}

			alg, err := auth.ParseAlgorithm(rt.cfg.PasswordHashAlgorithm)
			if err != nil {
				return err
			}
			hasher := auth.NewHasher(alg)

			id := users.NextID()
			u := &users.User{
				ID:           id,
				Email:        email,
				Name:         name,
				PasswordHash: hasher.RegisterHash(id, auth.ClientDigest(email, password)),
				Admin:        admin,
				Image:        users.GravatarURL(email),
				CreatedAt:    time.Now().UTC(),
			}

			ctx := cmd.Context()
			err = rt.withStores(ctx, func(s *storage.Stores) error {
				if s.DB == nil {
					return createUser(ctx, s.Users, u)
				}
				return db.WithTx(ctx, s.DB, func(ctx context.Context, tx db.DBTX) error {
					return createUser(ctx, users.NewPostgresRepository(tx), u)
				})
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}
	cmd.Flags().StringP("email", "e", "", "Email")
	cmd.Flags().StringP("name", "n", "", "Display name")
	cmd.Flags().StringP("password", "p", "", "Password")
	cmd.Flags().Bool("admin", false, "Grant admin role")
	return cmd
}

func createUser(ctx context.Context, repo users.Repository, u *users.User) error {
	existing, err := repo.FindByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return users.ErrEmailTaken
	}
	return repo.Save(ctx, u)
}

func newUserAdminCommand(rt *runtime, use, short string, admin bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			email = auth.NormalizeEmail(email)
			if email == "" {
				return errors.New("--email is required")
			}

			ctx := cmd.Context()
			return rt.withStores(ctx, func(s *storage.Stores) error {
				found, err := s.Users.FindByEmail(ctx, email)
				if err != nil {
					return err
				}
				if len(found) == 0 {
					return fmt.Errorf("%w: %s", users.ErrNotFound, email)
				}
				u := found[0]
				u.Admin = admin
				if err := s.Users.Update(ctx, &u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", u.Email, u.Admin)
				return nil
			})
		},
	}
	cmd.Flags().StringP("email", "e", "", "Email")
	return cmd
}

func newUserListCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "ユーザーを新しい順に一覧表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("page")

			ctx := cmd.Context()
			return rt.withStores(ctx, func(s *storage.Stores) error {
				total, err := s.Users.Count(ctx)
				if err != nil {
					return err
				}
				p := page.Compute(total, raw, rt.cfg.PageSize)
				list, err := s.Users.List(ctx, p.Offset, p.Limit)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tEMAIL\tNAME\tADMIN")
				for _, pr := range auth.NewPrincipals(list) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", pr.ID, pr.Email, pr.Name, pr.Admin)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d (%d users)\n", p.PageIndex, p.PageCount, p.ItemCount)
				return nil
			})
		},
	}
	cmd.Flags().String("page", "1", "Page number")
	return cmd
}
