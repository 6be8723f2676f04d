// Command tasks manages the task list from the terminal, reading and
// writing the same slot as the HTTP server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"task-tracker/internal/config"
	"task-tracker/internal/countries"
	"task-tracker/internal/envfile"
	"task-tracker/internal/models"
	"task-tracker/internal/storage"
	"task-tracker/internal/tasks"
	"task-tracker/pkg/logger"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

const usage = `tasks — manage your task list.

Usage:
  tasks [global flags] <command> [flags]

Commands:
  list                      show all tasks
  add                       --user NAME --country NAME --description TEXT
  edit ID                   [--user NAME] [--country NAME] [--description TEXT]
  toggle ID                 mark a task completed / not completed
  delete ID                 remove a task (asks for confirmation unless --yes)
  countries QUERY           suggest country names matching QUERY

Global flags:
`

var errUsage = errors.New("see tasks --help")

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	_ = envfile.Load(".env")
	cfg := config.Load()
	if os.Getenv("STORAGE_BACKEND") == "" {
		cfg.StorageBackend = config.BackendFile
	}

	global := pflag.NewFlagSet("tasks", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.StringVar(&cfg.StorageBackend, "backend", cfg.StorageBackend, "slot backend: file, redis, postgres or memory")
	global.StringVar(&cfg.TasksFile, "file", cfg.TasksFile, "slot file for the file backend")
	global.StringVar(&cfg.CountriesBaseURL, "countries-url", cfg.CountriesBaseURL, "country directory base URL")
	logLevel := global.String("log-level", "error", "log level for diagnostics on stderr")
	global.BoolP("help", "h", false, "show help")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stdout, usage+global.FlagUsages())
			return nil
		}
		return err
	}
	if help, _ := global.GetBool("help"); help || global.NArg() == 0 {
		fmt.Fprint(stdout, usage+global.FlagUsages())
		return nil
	}
	logger.SetDefault(logger.New(os.Stderr, *logLevel))

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "countries" {
		return runCountries(ctx, cfg, rest, stdout)
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	store := tasks.NewStore(backend, tasks.WithTimestampLayout(cfg.TimestampLayout))
	if err := store.Load(ctx); err != nil {
		return err
	}

	switch cmd {
	case "list":
		return printTasks(stdout, store.List())
	case "add":
		return runAdd(ctx, store, rest, stdout)
	case "edit":
		return runEdit(ctx, store, rest, stdout)
	case "toggle":
		id, err := oneID(rest)
		if err != nil {
			return err
		}
		t, err := store.ToggleCompletion(ctx, id)
		if err != nil {
			return noticeErr(err)
		}
		state := "open"
		if t.IsCompleted {
			state = "completed " + t.CompletedAt
		}
		fmt.Fprintf(stdout, "%s: %s\n", t.ID, state)
		return nil
	case "delete":
		return runDelete(ctx, store, rest, stdin, stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func fieldFlags(name string, f *models.Fields) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&f.UserAssigned, "user", "u", f.UserAssigned, "person the task is assigned to")
	fs.StringVarP(&f.Country, "country", "c", f.Country, "country")
	fs.StringVarP(&f.Description, "description", "d", f.Description, "description (max 120 characters)")
	return fs
}

func runAdd(ctx context.Context, store *tasks.Store, args []string, stdout io.Writer) error {
	var f models.Fields
	if err := fieldFlags("add", &f).Parse(args); err != nil {
		return err
	}
	t, err := store.Add(ctx, f)
	if err != nil {
		return noticeErr(err)
	}
	fmt.Fprintf(stdout, "%s\n%s\n", tasks.SuccessNotice(models.EventCreated).Message, t.ID)
	return nil
}

func runEdit(ctx context.Context, store *tasks.Store, args []string, stdout io.Writer) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("edit needs a task id: %w", errUsage)
	}
	form, err := store.StartEditing(ctx, args[0])
	if err != nil {
		return noticeErr(err)
	}
	f := form.Fields
	if err := fieldFlags("edit", &f).Parse(args[1:]); err != nil {
		store.ResetForm(ctx)
		return err
	}
	if _, err := store.Update(ctx, form.EditingID, f); err != nil {
		return noticeErr(err)
	}
	fmt.Fprintln(stdout, tasks.SuccessNotice(models.EventUpdated).Message)
	return nil
}

func runDelete(ctx context.Context, store *tasks.Store, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneID(fs.Args())
	if err != nil {
		return err
	}
	confirmed := *yes
	if !confirmed {
		fmt.Fprintf(stdout, "%s: %s [y/N] ", tasks.ConfirmDelete.Title, tasks.ConfirmDelete.Message)
		line, _ := bufio.NewReader(stdin).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		confirmed = answer == "y" || answer == "yes"
		if !confirmed {
			fmt.Fprintln(stdout, "Cancelled")
			return nil
		}
	}
	removed, err := store.Remove(ctx, id, confirmed)
	if err != nil {
		return noticeErr(err)
	}
	if removed {
		fmt.Fprintln(stdout, tasks.SuccessNotice(models.EventDeleted).Message)
	} else {
		fmt.Fprintln(stdout, "No task with id", id)
	}
	return nil
}

func runCountries(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	query := strings.Join(args, " ")
	dir := countries.NewDirectory(cfg.CountriesBaseURL, cfg.CountryLookupTimeout())
	res := countries.NewSuggester(dir, cfg.CountryLookupTimeout()).Fetch(ctx, query)
	for _, name := range res.Suggestions {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func printTasks(w io.Writer, list []models.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tASSIGNED\tCOUNTRY\tDESCRIPTION\tWHEN")
	for _, t := range list {
		done, when := " ", "Created: "+t.Timestamp
		if t.IsCompleted {
			done, when = "x", "Completed: "+t.CompletedAt
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\t%s\n", t.ID, done, t.UserAssigned, t.Country, t.Description, when)
	}
	return tw.Flush()
}

func oneID(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("expected exactly one task id: %w", errUsage)
	}
	return args[0], nil
}

// noticeErr turns a store error into the message a user would see.
func noticeErr(err error) error {
	n := tasks.NoticeFor(err)
	return fmt.Errorf("%s: %s (%w)", n.Title, n.Message, err)
}
