package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/hymnal/internal/entrypoint"
)

// SuperuserOptions holds the create-superuser flags. Empty values are read
// from stdin.
type SuperuserOptions struct {
	Username string
	Email    string
	Password string
}

func NewCreateSuperuserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuperuserOptions{}

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an active staff superuser",
		Long: `Create an administrator account that passes every permission check.

Values not given as flags are prompted for on stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateSuperuser(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "login name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password (8 to 72 bytes)")

	return cmd
}

func runCreateSuperuser(rootOpts *RootOptions, opts *SuperuserOptions, cmd *cobra.Command) error {
	if err := promptMissing(cmd.InOrStdin(), cmd.ErrOrStderr(), opts); err != nil {
		return err
	}

	app, err := entrypoint.NewApp(rootOpts.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.Accounts.CreateSuperuser(cmd.Context(), opts.Username, opts.Email, opts.Password)
	if err != nil {
		return fmt.Errorf("failed to create superuser: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created superuser %s (id %d)\n", user.Username, user.ID)
	return nil
}

// promptMissing reads one line from in for each empty option.
func promptMissing(in io.Reader, out io.Writer, opts *SuperuserOptions) error {
	reader := bufio.NewReader(in)
	fields := []struct {
		label string
		value *string
	}{
		{"Username", &opts.Username},
		{"Email", &opts.Email},
		{"Password", &opts.Password},
	}

	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		fmt.Fprintf(out, "%s: ", f.label)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read %s: %w", strings.ToLower(f.label), err)
		}
		*f.value = strings.TrimSpace(line)
		if *f.value == "" {
			return fmt.Errorf("%s is required", strings.ToLower(f.label))
		}
	}
	return nil
}
