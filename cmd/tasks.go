package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/doipv/internal/tasks"
)

var (
	tasksTriggerWait    bool
	tasksTriggerTimeout time.Duration
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and trigger background tasks of a server",
	Long: `List, trigger and read the logs of the background tasks of the server given via --server,
like "purge-profile-cache".`,
}

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all background tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving tasks...")
		list, err := cli.ListTasks(cmd.Context())
		if err != nil {
			return logError(err, "", "failed to list tasks")
		}
		if len(list) == 0 {
			log.Info().Msg("The server has no background tasks (is the profile cache disabled?)")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Name", "State", "Runs", "Last Run", "Next Run", "Last Result"})
		for _, task := range list {
			t.AppendRow(table.Row{
				bold(task.Name),
				taskState(task),
				task.Runs,
				sinceOrNever(task.LastRun),
				untilOrNA(task.NextRun),
				taskResult(task.LastResult),
			})
		}
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

var tasksTriggerCmd = &cobra.Command{
	Use:   "trigger NAME",
	Short: "Run a background task now",
	Example: `  # Purge expired profiles from the cache and wait for the result
  doipv --server http://localhost:8080 tasks trigger --wait purge-profile-cache`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("task name cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		before, err := cli.Task(cmd.Context(), name)
		if err != nil {
			return logError(err, "", "failed to look up task")
		}

		log.Debug().Msgf("Triggering task '%s'...", name)
		if err := cli.TriggerTask(cmd.Context(), name); err != nil {
			return logError(err, "", "failed to trigger task")
		}
		log.Info().Msgf("%s triggered task '%s'", greenCheck(), bold(name))

		if !tasksTriggerWait {
			log.Info().Msgf("Run '%s' to see progress.", color.CyanString("doipv tasks logs "+name))
			return nil
		}

		ctx := cmd.Context()
		if tasksTriggerTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, tasksTriggerTimeout)
			defer cancel()
		}
		after, err := cli.WaitForRun(ctx, name, before.Runs, 250*time.Millisecond)
		if err != nil {
			return fmt.Errorf("waiting for task: %w", err)
		}
		logs, err := cli.GetTaskLogs(ctx, name)
		if err != nil {
			return logError(err, "", "failed to retrieve task logs")
		}
		printTaskLogs(cmd.OutOrStdout(), logs)
		if after.LastResult != "success" {
			return fmt.Errorf("task '%s' %s", name, after.LastResult)
		}
		return nil
	},
}

var tasksLogsCmd = &cobra.Command{
	Use:   "logs NAME",
	Short: "Show the logs of the last run of a background task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		logs, err := cli.GetTaskLogs(cmd.Context(), args[0])
		if err != nil {
			return logError(err, "", "failed to retrieve task logs")
		}
		printTaskLogs(cmd.OutOrStdout(), logs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksTriggerCmd, tasksLogsCmd)

	tasksTriggerCmd.Flags().BoolVarP(&tasksTriggerWait, "wait", "w", false,
		"Wait for the run to finish and print its logs")
	tasksTriggerCmd.Flags().DurationVar(&tasksTriggerTimeout, "wait-timeout", 2*time.Minute,
		"Give up waiting after this duration")
}

func taskState(task tasks.TaskStatus) string {
	if task.Running {
		return color.BlueString("running")
	}
	return "idle"
}

func taskResult(result string) string {
	switch result {
	case "":
		return faint("-")
	case "success":
		return greenCheck() + " " + result
	default:
		return redCross() + " " + result
	}
}

func sinceOrNever(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Round(time.Second).String() + " ago"
}

func untilOrNA(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return "in " + time.Until(t).Round(time.Second).String()
}

func logLevelLabel(level string) string {
	switch level {
	case "debug":
		return faint("dbg")
	case "info":
		return color.GreenString("inf")
	case "warn":
		return color.YellowString("wrn")
	case "error":
		return color.RedString("err")
	default:
		return level
	}
}

func printTaskLogs(w io.Writer, logs []tasks.LogEntry) {
	if len(logs) == 0 {
		_, _ = fmt.Fprintln(w, faint("(task has not run yet)"))
		return
	}
	for _, entry := range logs {
		_, _ = fmt.Fprintf(w, "%s | %s | %s\n", entry.Time.Format(time.TimeOnly), logLevelLabel(entry.Level), entry.Message)
	}
}
