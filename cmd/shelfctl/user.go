package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookshelf/internal/httpx"
	"bookshelf/internal/user"
)

type newAccount struct {
	Username string `validate:"required,min=1,max=100,username"`
	Password string `validate:"required,bcrypt_len"`
}

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <username>",
		Short: "Create a user; the password is read from the terminal or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			acct := newAccount{Username: strings.TrimSpace(args[0]), Password: password}
			if details := httpx.ValidateStruct(acct); len(details) > 0 {
				return errors.New(httpx.FirstMessage(details))
			}

			cn, err := openConn(cmd.Context(), c.dsn())
			if err != nil {
				return err
			}
			defer cn.close()

			u, err := user.NewService(cn.users).Register(cmd.Context(), acct.Username, acct.Password)
			if err != nil {
				if errors.Is(err, user.ErrAlreadyExists) {
					return fmt.Errorf("user %q already exists", acct.Username)
				}
				return err
			}
			c.logger.WithField("user_id", u.ID).Info("user created")
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	})
	return cmd
}

// readPassword masks input on a terminal and otherwise reads one line, so
// passwords can be piped in scripts.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return trimLineEnding(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return trimLineEnding(line), nil
}

// trimLineEnding drops only the line terminator; surrounding spaces are part
// of the password, as they are for /register.
func trimLineEnding(s string) string {
	return strings.TrimRight(s, "\r\n")
}
