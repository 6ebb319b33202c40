// Command todo is a CLI client for the todo API.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cmd := newRootCmd()
	cmd.Version = fmt.Sprintf("%s (built: %s)", version, buildDate)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultServer() string {
	if v := os.Getenv("TODO_SERVER"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func newRootCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "Command line client for the todo API",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&server, "server", defaultServer(), "API base URL (env TODO_SERVER)")

	client := func() *apiClient { return newAPIClient(server) }
	cmd.AddCommand(
		newSessionCmd("register", "Create an account and log in", &server, client),
		newSessionCmd("login", "Log in and save the session", &server, client),
		newLogoutCmd(&server, client),
		newListCmd(&server, client),
		newAddCmd(&server, client),
	)
	return cmd
}

func newSessionCmd(use, short string, server *string, client func() *apiClient) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := client()
			call := c.login
			if use == "register" {
				call = c.register
			}
			resp, err := call(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := saveToken(*server, resp.SessionToken); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(server *string, client func() *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := loadToken(*server)
			if err != nil {
				return err
			}
			resp, err := client().logout(cmd.Context(), tok)
			if err != nil {
				return err
			}
			if err := clearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newListCmd(server *string, client func() *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print your todo list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := loadToken(*server)
			if err != nil {
				return err
			}
			tasks, err := client().list(cmd.Context(), tok)
			if err != nil {
				return err
			}
			printTasks(cmd, tasks)
			return nil
		},
	}
}

func newAddCmd(server *string, client func() *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task>...",
		Short: "Append a task to your todo list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := loadToken(*server)
			if err != nil {
				return err
			}
			tasks, err := client().add(cmd.Context(), tok, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printTasks(cmd, tasks)
			return nil
		},
	}
}

func printTasks(cmd *cobra.Command, tasks []string) {
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
		return
	}
	for i, t := range tasks {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, t)
	}
}
