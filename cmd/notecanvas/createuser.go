package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/adapter/postgres"
	"github.com/pscheid92/notecanvas/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	createUserName     string
	createUserPassword bool
)

var createUserCmd = &cobra.Command{
	Use:   "create-user [email]",
	Short: "Create an account without going through the sign-up page",
	Long: `Create an account with the given email. The password is read from the
terminal without echo, or from stdin with --password-stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd, createUserPassword)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		pool, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		// Sign-up never touches the session store.
		identity, err := app.NewIdentity(postgres.NewUserRepo(pool), nil, clockwork.NewRealClock(), 0, nil)
		if err != nil {
			return err
		}

		user, err := identity.SignUp(ctx, args[0], password, createUserName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserName, "display-name", "", "Display name (defaults to the email's local part)")
	createUserCmd.Flags().BoolVar(&createUserPassword, "password-stdin", false, "Read the password from stdin")
	rootCmd.AddCommand(createUserCmd)
}

func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin || !term.IsTerminal(int(os.Stdin.Fd())) {
		return readPasswordLine(cmd.InOrStdin())
	}

	fd := int(os.Stdin.Fd())
	out := cmd.ErrOrStderr()

	fmt.Fprint(out, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	confirm, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(password) != string(confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(password), nil
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}
