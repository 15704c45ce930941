package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to your TMDB account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEngine(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.requireAPIKey(); err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if username == "" {
				fmt.Fprint(out, "TMDB username: ")
				username, err = readLine(in)
				if err != nil {
					return err
				}
			}
			if username == "" {
				return errors.New("username cannot be empty")
			}

			fmt.Fprint(out, "Password: ")
			password, err := readPassword(cmd.InOrStdin(), in)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			result, err := e.client.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := e.session.Save(result); err != nil {
				return err
			}

			fmt.Fprintf(out, "Logged in as %s. Run \"reel sync\" to fetch your lists.\n", result.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "TMDB username")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored TMDB session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEngine(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()

			if id := e.session.SessionID(); id != "" && e.cfg.IsConfigured() {
				if err := e.client.Logout(cmd.Context(), id); err != nil {
					// The local session is cleared regardless
					e.logger.Warn("failed to delete remote session", "error", err)
				}
			}
			if err := e.session.Clear(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise
func readPassword(in io.Reader, buffered *bufio.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return readLine(buffered)
}
