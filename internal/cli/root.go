// Package cli implements orderctl, the back-office command line for the
// orderdesk API.
package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orderdesk/internal/client"
	"orderdesk/internal/config"
	"orderdesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys. Each can also be set as ORDERCTL_<KEY>.
const (
	keyServer   = "server"
	keyToken    = "token"
	keyRole     = "role"
	keyUsername = "username"
	keyLimit    = "limit"
	keyTimeout  = "timeout"
	keyLogLevel = "log-level"
)

type app struct {
	v      *viper.Viper
	logger zerolog.Logger
}

// NewRootCommand builds the orderctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "orderctl",
		Short: "Back-office tool for orderdesk",
		Long: `orderctl lists and moves orders through the delivery workflow,
downloads invoices and batch exports, and shows the dashboard summary.

Settings come from flags, ORDERCTL_* environment variables and an optional
YAML config file, in that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.orderdesk/orderctl.yaml)")
	flags.String(keyServer, "http://localhost:8080", "orderdesk API base URL")
	flags.Duration(keyTimeout, 30*time.Second, "request timeout")
	flags.String(keyLogLevel, "warn", "log level (debug, info, warn, error)")
	for _, key := range []string{keyServer, keyTimeout, keyLogLevel} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		a.loginCommand(),
		a.ordersCommand(),
		a.invoiceCommand(),
		a.productsCommand(),
		a.summaryCommand(),
	)
	return root
}

// Execute runs orderctl with the process arguments.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("ORDERCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault(keyLimit, 10)
	a.v.SetConfigType("yaml")
	a.v.SetConfigPermissions(0o600)

	path, err := a.configPath(cmd)
	if err != nil {
		return err
	}
	a.v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	a.logger = config.NewLoggerTo(config.LoggerConfig{
		Level:  a.v.GetString(keyLogLevel),
		Format: "console",
	}, cmd.ErrOrStderr())
	return nil
}

func (a *app) configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	if path := os.Getenv("ORDERCTL_CONFIG"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".orderdesk", "orderctl.yaml"), nil
}

// session returns the stored session, if a token is configured.
func (a *app) session() (model.Session, bool) {
	token := a.v.GetString(keyToken)
	if token == "" {
		return model.Session{}, false
	}
	return model.Session{
		Token:    token,
		Username: a.v.GetString(keyUsername),
		Role:     model.Role(a.v.GetString(keyRole)),
	}, true
}

func (a *app) client() *client.Client {
	opts := []client.Option{
		client.WithLogger(a.logger),
		client.WithHTTPClient(&http.Client{Timeout: a.v.GetDuration(keyTimeout)}),
	}
	if s, ok := a.session(); ok {
		opts = append(opts, client.WithSession(s))
	}
	return client.New(a.v.GetString(keyServer), opts...)
}

// role is the stored session role, or anonymous.
func (a *app) role() model.Role {
	s, ok := a.session()
	if !ok || s.Role == "" {
		return model.RoleAnonymous
	}
	return s.Role
}

func (a *app) saveSession(s model.Session) (string, error) {
	a.v.Set(keyToken, s.Token)
	a.v.Set(keyRole, string(s.Role))
	a.v.Set(keyUsername, s.Username)

	path := a.v.ConfigFileUsed()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := a.v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return path, nil
}

func (a *app) loginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ORDERCTL_PASSWORD")
			}
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password (or ORDERCTL_PASSWORD) are required")
			}

			s, err := a.client().Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			path, err := a.saveSession(s)
			if err != nil {
				return err
			}
			a.logger.Debug().Str("path", path).Msg("session saved")

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", s.Username, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "staff username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "staff password")
	return cmd
}

func writeFile(out io.Writer, dir string, doc *client.Document, fallback string) error {
	name := filepath.Base(doc.Filename)
	if doc.Filename == "" || name == "." || name == string(filepath.Separator) {
		name = fallback
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Saved %s (%d bytes)\n", path, len(doc.Body))
	return nil
}
