package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sweetcrumb/cakeshop-api/pkg/adminclient"
	pkgauth "github.com/sweetcrumb/cakeshop-api/pkg/auth"
)

var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Manage the storefront admin session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the storefront API")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newHashPinCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newSession() (*adminclient.Session, error) {
	return adminclient.NewSession(adminclient.NewFileSessionStore(""))
}

// readPin prompts on stderr so the PIN prompt never mixes with piped output.
// The PIN itself is never echoed back or logged.
func readPin(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("unable to read PIN: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Validate the admin PIN and activate the admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := readPin("Enter admin PIN: ")
			if err != nil {
				return err
			}

			session, err := newSession()
			if err != nil {
				return err
			}

			identity := adminclient.NewIdentityProvider("")
			client := adminclient.NewClient(serverURL, identity)

			result, err := client.ValidatePin(cmd.Context(), pin)
			if err != nil {
				if errors.Is(err, adminclient.ErrConnection) {
					fmt.Println("Connection error. Please try again.")
				}
				return err
			}

			if !result.Success {
				fmt.Println(result.Error)
				return errors.New("login failed")
			}

			if err := session.Activate(); err != nil {
				return err
			}

			fmt.Println("Welcome, admin.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession()
			if err != nil {
				return err
			}

			if err := session.Logout(); err != nil {
				return err
			}

			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the admin session state and this device's client key",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession()
			if err != nil {
				return err
			}

			key, err := adminclient.NewIdentityProvider("").GetOrCreate()
			if err != nil {
				return err
			}

			state := "inactive"
			if session.IsAdmin() {
				state = "active"
			}

			fmt.Printf("Admin session: %s\n", state)
			fmt.Printf("Client key:    %s\n", key)
			return nil
		},
	}
}

func newHashPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-pin",
		Short: "Hash a PIN for use as ADMIN_PIN_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := readPin("Enter PIN to hash: ")
			if err != nil {
				return err
			}

			hash, err := pkgauth.HashPin(pin)
			if err != nil {
				return err
			}

			fmt.Println(hash)
			return nil
		},
	}
}
