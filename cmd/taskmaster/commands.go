package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"taskmaster/internal/models"
	"taskmaster/internal/service"
)

var errUsage = errors.New("invalid usage")

// cli runs one subcommand against an engine and prints to out
type cli struct {
	engine *service.Engine
	out    io.Writer
	in     io.Reader
}

func (c *cli) run(ctx context.Context, name string, args []string) error {
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(c.out)
		return nil
	}

	cmd, ok := map[string]func(context.Context, []string) error{
		"login":  c.login,
		"add":    c.add,
		"done":   c.done,
		"edit":   c.edit,
		"rm":     c.remove,
		"clear":  c.clear,
		"ls":     c.list,
		"board":  c.board,
		"stats":  c.stats,
		"whoami": c.whoami,
	}[name]
	if !ok {
		printUsage(c.out)
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	notices, err := c.engine.Open(ctx)
	if err != nil {
		return err
	}
	c.printNotices(notices)
	return cmd(ctx, args)
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: login <name>", errUsage)
	}
	notices, err := c.engine.StartSession(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	c.printNotices(notices)
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: add <text>", errUsage)
	}
	task, notices, err := c.engine.AddTask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s  %s\n", shortID(task.ID), task.Text)
	c.printNotices(notices)
	return nil
}

func (c *cli) done(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: done <id>", errUsage)
	}
	id, err := c.resolve(args[0])
	if err != nil {
		return err
	}
	notices, err := c.engine.ToggleTask(ctx, id)
	if err != nil {
		return err
	}
	if task, ok := c.engine.Task(id); ok {
		fmt.Fprintln(c.out, formatTask(task))
	}
	c.printNotices(notices)
	return nil
}

func (c *cli) edit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: edit <id> [text]", errUsage)
	}
	id, err := c.resolve(args[0])
	if err != nil {
		return err
	}
	notices, err := c.engine.EditTask(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	c.printNotices(notices)
	return nil
}

func (c *cli) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(c.out)
	yes := fs.Bool("y", false, "Skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: rm [-y] <id>", errUsage)
	}
	id, err := c.resolve(fs.Arg(0))
	if err != nil {
		return err
	}
	task, _ := c.engine.Task(id)
	if !*yes && !c.confirm(fmt.Sprintf("Delete %q?", task.Text)) {
		fmt.Fprintln(c.out, "Cancelled")
		return nil
	}
	notices, err := c.engine.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	c.printNotices(notices)
	return nil
}

func (c *cli) clear(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(c.out)
	yes := fs.Bool("y", false, "Skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if done := c.engine.Stats().Completed; done > 0 && !*yes &&
		!c.confirm(fmt.Sprintf("Clear %d completed task(s)?", done)) {
		fmt.Fprintln(c.out, "Cancelled")
		return nil
	}
	_, notices, err := c.engine.ClearCompleted(ctx)
	if err != nil {
		return err
	}
	c.printNotices(notices)
	return nil
}

func (c *cli) list(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(c.out)
	filterFlag := fs.String("filter", "all", "all, active or completed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := models.ParseFilter(*filterFlag)
	if err != nil {
		return err
	}

	n := 0
	for task := range c.engine.Tasks(filter) {
		fmt.Fprintln(c.out, formatTask(task))
		n++
	}
	if n == 0 {
		fmt.Fprintln(c.out, "No tasks")
	}
	stats := c.engine.Stats()
	fmt.Fprintf(c.out, "\n%d active, %d completed (%d%%)\n", stats.Active, stats.Completed, stats.PercentComplete)
	return nil
}

func (c *cli) board(_ context.Context, _ []string) error {
	entries := c.engine.Leaderboard()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "Leaderboard is empty")
		return nil
	}
	me := c.engine.User().Name
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tCOINS\tSTREAK\t")
	for _, e := range entries {
		marker := ""
		if e.Name == me {
			marker = "<- you"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", e.Rank, e.Name, e.Coins, e.Streak, marker)
	}
	return w.Flush()
}

func (c *cli) stats(_ context.Context, _ []string) error {
	s := c.engine.Stats()
	fmt.Fprintf(c.out, "Total:     %d\nActive:    %d\nCompleted: %d\nProgress:  %d%%\n",
		s.Total, s.Active, s.Completed, s.PercentComplete)
	return nil
}

func (c *cli) whoami(_ context.Context, _ []string) error {
	u := c.engine.User()
	if !u.HasSession() {
		fmt.Fprintln(c.out, "No session. Run: taskmaster login <name>")
	} else {
		fmt.Fprintf(c.out, "%s\n", u.Name)
	}
	fmt.Fprintf(c.out, "Coins:  %d\nStreak: %d day(s)\n", u.Coins, u.DailyStreak)
	if rank := c.engine.UserRank(); rank > 0 {
		fmt.Fprintf(c.out, "Rank:   #%d\n", rank)
	}
	return nil
}

// resolve maps a full id or a unique prefix to a task id
func (c *cli) resolve(prefix string) (models.TaskID, error) {
	id, ok := c.engine.ResolveTaskID(prefix)
	if !ok {
		return "", fmt.Errorf("no single task matches %q", prefix)
	}
	return id, nil
}

func (c *cli) confirm(question string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(c.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (c *cli) printNotices(notices []models.Notice) {
	for _, n := range notices {
		fmt.Fprintln(c.out, n.Message)
	}
}

func shortID(id models.TaskID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

func formatTask(t models.Task) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s  %s", box, shortID(t.ID), t.Text)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Taskmaster")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskmaster login <name>           Start a session")
	fmt.Fprintln(w, "  taskmaster add <text>             Add a task (+10 coins)")
	fmt.Fprintln(w, "  taskmaster done <id>              Toggle a task (+10 coins when completed)")
	fmt.Fprintln(w, "  taskmaster edit <id> [text]       Change a task's text; empty text deletes it")
	fmt.Fprintln(w, "  taskmaster rm [-y] <id>           Delete a task")
	fmt.Fprintln(w, "  taskmaster clear [-y]             Remove completed tasks")
	fmt.Fprintln(w, "  taskmaster ls [-filter f]         List tasks (all, active, completed)")
	fmt.Fprintln(w, "  taskmaster board                  Show the leaderboard")
	fmt.Fprintln(w, "  taskmaster stats                  Show task statistics")
	fmt.Fprintln(w, "  taskmaster whoami                 Show the current user")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids may be shortened to any unique prefix.")
}
