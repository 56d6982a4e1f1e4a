// Package admin implements the operator CLI: schema migrations, password
// hashing, seeding the first superadmin account and uploading avatars.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/dbx"
	"github.com/dmitrijs2005/userkeeper/internal/netx"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/storage"
	"github.com/spf13/cobra"
)

type uploadPresigner interface {
	PresignUpload(ctx context.Context, key string) (string, error)
}

type deps struct {
	loadConfig func() (*config.Config, error)
	openDB     func(ctx context.Context, dsn string) (*sql.DB, error)
	manager    repomanager.RepositoryManager
	avatars    func(cfg storage.S3Config) uploadPresigner
	httpClient *http.Client
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.LoadConfig,
		openDB:     repomanager.Open,
		manager:    repomanager.NewPostgresRepositoryManager(),
		avatars: func(cfg storage.S3Config) uploadPresigner {
			return storage.NewAvatarStore(cfg)
		},
		httpClient: &http.Client{Timeout: time.Minute},
	}
}

// NewRootCmd builds the userkeeper-admin command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d deps) *cobra.Command {
	var (
		configPath string
		dsn        string
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:           "userkeeper-admin",
		Short:         "Administrative tasks for the userkeeper server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := d.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dsn") {
				c.DatabaseDSN = dsn
			}
			cfg = c
			return nil
		},
	}

	// Both flags are also read by config.LoadConfig from os.Args; they are
	// declared here so cobra accepts them.
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.json, .yaml, .yml)")
	root.PersistentFlags().StringVarP(&dsn, "dsn", "d", "", "PostgreSQL DSN, overrides config")

	getCfg := func() *config.Config { return cfg }

	root.AddCommand(
		migrateCmd(d, getCfg),
		hashPasswordCmd(getCfg),
		createSuperadminCmd(d, getCfg),
		setAvatarCmd(d, getCfg),
	)

	return root
}

func migrateCmd(d deps, cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := d.openDB(ctx, cfg().DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := d.manager.RunMigrations(ctx, db); err != nil {
				return err
			}
			v, err := d.manager.SchemaVersion(ctx, db)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func hashPasswordCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password without echo and print its bcrypt hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := auth.NewPasswordHasher(cfg().BcryptCost)
			if err != nil {
				return err
			}

			pw, err := promptPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			hash, err := hasher.Hash(string(pw))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

type superadminInput struct {
	email    string
	username string
	name     string
	surname  string
}

func (in superadminInput) validate() error {
	var errs []error
	if addr, err := mail.ParseAddress(in.email); err != nil || addr.Address != in.email {
		errs = append(errs, fmt.Errorf("invalid email %q", in.email))
	}
	if in.username == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if in.name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	return errors.Join(errs...)
}

func createSuperadminCmd(d deps, cfg func() *config.Config) *cobra.Command {
	var in superadminInput

	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "Create an active account with ROLE_SUPERADMIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.email = strings.ToLower(strings.TrimSpace(in.email))
			if err := in.validate(); err != nil {
				return err
			}

			hasher, err := auth.NewPasswordHasher(cfg().BcryptCost)
			if err != nil {
				return err
			}

			pw, err := promptPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(string(pw))
			common.WipeByteArray(pw)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := d.openDB(ctx, cfg().DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := createSuperadmin(ctx, db, d.manager, in, hash)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created superadmin %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.email, "email", "", "account email")
	cmd.Flags().StringVar(&in.username, "username", "", "account username")
	cmd.Flags().StringVar(&in.name, "name", "", "first name")
	cmd.Flags().StringVar(&in.surname, "surname", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func createSuperadmin(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, in superadminInput, hash string) (*models.User, error) {
	return dbx.WithTxValue(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := m.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, in.email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("email %s: %w", in.email, common.ErrAlreadyExists)
		}

		return repo.Create(ctx, &models.User{
			Username:     in.username,
			Name:         in.name,
			Surname:      in.surname,
			Email:        in.email,
			PasswordHash: hash,
			Roles:        models.Roles{models.RoleUser, models.RoleSuperadmin},
			IsActive:     true,
		})
	})
}

const maxAvatarBytes = 5 << 20

func setAvatarCmd(d deps, cfg func() *config.Config) *cobra.Command {
	var (
		user string
		file string
	)

	cmd := &cobra.Command{
		Use:   "set-avatar",
		Short: "Upload an image to object storage and make it the user's avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := auth.ParseIdentifier(user)
			if err != nil {
				return fmt.Errorf("user %q: %w", user, err)
			}

			body, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if len(body) == 0 {
				return fmt.Errorf("%s is empty", file)
			}
			if len(body) > maxAvatarBytes {
				return fmt.Errorf("%s is larger than %d bytes", file, maxAvatarBytes)
			}

			ctx := cmd.Context()
			db, err := d.openDB(ctx, cfg().DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := d.manager.Users(db)
			u, err := auth.NewResolver(repo).ByIdentifier(ctx, ident)
			if err != nil {
				return fmt.Errorf("user %q: %w", user, err)
			}

			key := storage.AvatarKey(u.ID)
			url, err := d.avatars(cfg().S3()).PresignUpload(ctx, key)
			if err != nil {
				return err
			}
			if err := netx.PutPresigned(ctx, d.httpClient, url, http.DetectContentType(body), body); err != nil {
				return err
			}
			if err := repo.SetAvatarKey(ctx, u.ID, key); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "avatar for %s stored at %s\n", u.Email, key)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id or email")
	cmd.Flags().StringVar(&file, "file", "", "image file to upload")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
