// Package catcher holds the operator commands for catcher processes.
package catcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/postcatcher/postcatcher-bot/bootstrap"
	"github.com/postcatcher/postcatcher-bot/config"
	"github.com/postcatcher/postcatcher-bot/core/catcher"
	"github.com/postcatcher/postcatcher-bot/core/tgauth"
	"github.com/postcatcher/postcatcher-bot/database"
)

var catcherCmd = &cobra.Command{
	Use:   "catcher",
	Short: "Manage catcher accounts and their processes",
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List catchers with their process state",
	Args:  cobra.NoArgs,
	RunE:  runLs,
}

var statusCmd = &cobra.Command{
	Use:   "status <phone>",
	Short: "Report whether the catcher of phone is running",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var stopCmd = &cobra.Command{
	Use:   "stop <phone>",
	Short: "Stop the catcher process of phone",
	Args:  cobra.ExactArgs(1),
	RunE:  runStop,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Register a new catcher account interactively",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var connectCmd = &cobra.Command{
	Use:   "connect <id>",
	Short: "Start a registered catcher, logging in again when needed",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnect,
}

func Register(root *cobra.Command) {
	stopCmd.Flags().Bool("delete-session", false, "also remove the session file")
	loginCmd.Flags().String("phone", "", "phone number of the account")
	loginCmd.Flags().Int("app-id", 0, "api_id of the account")
	loginCmd.Flags().String("app-hash", "", "api_hash of the account")
	loginCmd.MarkFlagRequired("phone")
	loginCmd.MarkFlagRequired("app-id")
	loginCmd.MarkFlagRequired("app-hash")
	catcherCmd.AddCommand(lsCmd, statusCmd, stopCmd, loginCmd, connectCmd)
	root.AddCommand(catcherCmd)
}

func runLs(cmd *cobra.Command, _ []string) error {
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	catchers, err := app.Catchers.RefreshAll(ctx)
	if err != nil {
		return err
	}
	pids, err := app.Supervisor.List()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(catchers, pids))
	return nil
}

func renderTable(catchers []database.Catcher, pidPhones []string) string {
	withPid := make(map[string]bool, len(pidPhones))
	for _, p := range pidPhones {
		withPid[p] = true
	}
	up := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	down := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	rows := make([][]string, 0, len(catchers))
	for _, c := range catchers {
		state := down.Render("stopped")
		if c.IsConnected {
			state = up.Render("running")
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.Phone,
			strconv.Itoa(c.AppID),
			state,
			strconv.FormatBool(withPid[c.Phone]),
			humanize.Time(c.CreatedAt),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PHONE", "APP ID", "STATE", "PID FILE", "ADDED").
		Rows(rows...).
		String()
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	phone := tgauth.NormalizePhone(args[0])
	state := "stopped"
	if app.Supervisor.IsRunning(ctx, phone) {
		state = "running"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", phone, state)
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	deleteSession, _ := cmd.Flags().GetBool("delete-session")
	phone := tgauth.NormalizePhone(args[0])
	app.Supervisor.Stop(ctx, phone, deleteSession)
	if c, err := database.GetCatcherByPhone(ctx, phone); err == nil {
		c.IsConnected = false
		if err := database.SaveCatcher(ctx, c); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: stopped\n", phone)
	return nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	phone, _ := cmd.Flags().GetString("phone")
	appID, _ := cmd.Flags().GetInt("app-id")
	appHash, _ := cmd.Flags().GetString("app-hash")
	res, err := app.Catchers.Begin(ctx, phone, appID, appHash)
	if err != nil {
		return err
	}
	return finishLogin(ctx, cmd, app.Catchers, res)
}

func runConnect(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid catcher id %q", args[0])
	}
	ctx, app, err := bootstrap.Init(cmd.Context(), config.GetConfigFile(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Catchers.Connect(ctx, uint(id))
	if err != nil {
		return err
	}
	return finishLogin(ctx, cmd, app.Catchers, res)
}

// finishLogin prompts for codes and passwords until the handshake ends.
func finishLogin(ctx context.Context, cmd *cobra.Command, m *catcher.Manager, res catcher.Result) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	for {
		if res.Connected() {
			fmt.Fprintf(out, "catcher %d (%s) connected\n", res.Catcher.ID, res.Catcher.Phone)
			return nil
		}
		if res.Next == nil {
			return fmt.Errorf("login failed: %s", res.Outcome)
		}
		if res.Outcome.Reason == tgauth.ReasonCodeExpired {
			return fmt.Errorf("login failed: %s", res.Outcome)
		}
		if !res.Outcome.OK && res.Outcome.Reason != tgauth.ReasonPasswordRequired {
			fmt.Fprintf(out, "attempt failed: %s\n", res.Outcome)
		}

		var (
			input string
			err   error
		)
		switch res.Next.(type) {
		case catcher.AwaitingPassword:
			input, err = readPassword(out, in)
		default:
			fmt.Fprintf(out, "code sent to %s: ", res.Next.Credentials().Phone)
			input, err = in.ReadString('\n')
		}
		if err != nil && (err != io.EOF || strings.TrimSpace(input) == "") {
			return fmt.Errorf("reading input: %w", err)
		}
		if res, err = m.Complete(ctx, res.Next, strings.TrimSpace(input)); err != nil {
			return err
		}
	}
}

func readPassword(out io.Writer, in *bufio.Reader) (string, error) {
	fmt.Fprint(out, "two-step verification password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(b), err
	}
	return in.ReadString('\n')
}
