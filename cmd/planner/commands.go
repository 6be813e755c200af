package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/internal/app"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase/schedule"
	"github.com/fastygo/planner/usecase/task"
)

const usageText = `Usage: planner <group> <command> [flags]

  user  register -email E -password P
  user  verify   -email E -password P
  user  get      -id N
  task  create   -title T [-description D] [-estimate MIN] [-due RFC3339] [-priority N]
  task  get      -id N
  task  list     [-status S] [-limit N] [-offset N]
  task  update   -id N [-title T] [-description D] [-estimate MIN] [-due RFC3339] [-priority N]
  task  status   -id N -to TODO|IN_PROGRESS|DONE
  task  delete   -id N
  event add      -task N -start RFC3339 -end RFC3339 [-source S]
  event get      -id N
  event update   -id N [-start RFC3339] [-end RFC3339] [-source S]
  event delete   -id N
  event list     -task N
`

var errUsage = errors.New("unknown command, run without arguments for usage")

type command func(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error)

var commands = map[string]command{
	"user register": userRegister,
	"user verify":   userVerify,
	"user get":      userGet,
	"task create":   taskCreate,
	"task get":      taskGet,
	"task list":     taskList,
	"task update":   taskUpdate,
	"task status":   taskStatus,
	"task delete":   taskDelete,
	"event add":     eventAdd,
	"event get":     eventGet,
	"event update":  eventUpdate,
	"event delete":  eventDelete,
	"event list":    eventList,
}

// run dispatches args and writes the result to out as indented JSON.
func run(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errUsage
	}
	name := args[0] + " " + args[1]
	cmd, ok := commands[name]
	if !ok {
		return errUsage
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	result, err := cmd(ctx, a, fs, args[2:])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// set reports which flags were given explicitly.
func set(fs *flag.FlagSet) map[string]bool {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

func parseTime(name, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s: %w", name, err)
	}
	return t, nil
}

func userRegister(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a.Users.Register(ctx, *email, *password)
}

func userVerify(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a.Users.VerifyPassword(ctx, *email, *password)
}

func userGet(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a.Users.Get(ctx, *id)
}

type taskFlags struct {
	title, description, due *string
	estimate, priority      *int
}

func bindTaskFlags(fs *flag.FlagSet) taskFlags {
	return taskFlags{
		title:       fs.String("title", "", ""),
		description: fs.String("description", "", ""),
		due:         fs.String("due", "", ""),
		estimate:    fs.Int("estimate", 0, ""),
		priority:    fs.Int("priority", 0, ""),
	}
}

// patch converts explicitly given flags into a TaskPatch.
func (f taskFlags) patch(seen map[string]bool) (domain.TaskPatch, error) {
	var p domain.TaskPatch
	if seen["title"] {
		p.Title = f.title
	}
	if seen["description"] {
		p.Description = f.description
	}
	if seen["estimate"] {
		p.EstimatedMinutes = f.estimate
	}
	if seen["priority"] {
		p.Priority = f.priority
	}
	if seen["due"] {
		due, err := parseTime("due", *f.due)
		if err != nil {
			return p, err
		}
		p.DueAt = &due
	}
	return p, nil
}

func taskCreate(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	f := bindTaskFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	p, err := f.patch(set(fs))
	if err != nil {
		return nil, err
	}
	in := task.CreateTaskInput{
		Description:      p.Description,
		EstimatedMinutes: p.EstimatedMinutes,
		DueAt:            p.DueAt,
		Priority:         *f.priority,
		Title:            *f.title,
	}
	return a.Tasks.Create(ctx, in)
}

func taskGet(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a.Tasks.Get(ctx, *id)
}

func taskList(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	status := fs.String("status", "", "")
	limit := fs.Int("limit", 50, "")
	offset := fs.Int("offset", 0, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	tasks, err := a.Tasks.List(ctx, repository.TaskFilter{
		Status: domain.TaskStatus(*status),
		Limit:  *limit,
		Offset: *offset,
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func taskUpdate(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	f := bindTaskFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	p, err := f.patch(set(fs))
	if err != nil {
		return nil, err
	}
	return a.Tasks.UpdateFields(ctx, *id, p)
}

func taskStatus(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	to := fs.String("to", "", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a.Tasks.UpdateStatus(ctx, *id, *to)
}

func taskDelete(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	removed, err := a.Tasks.Delete(ctx, *id)
	if err != nil {
		return nil, err
	}
	return map[string]any{"task_id": *id, "events_removed": removed}, nil
}

func eventAdd(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	taskID := fs.Int64("task", 0, "")
	start := fs.String("start", "", "")
	end := fs.String("end", "", "")
	source := fs.String("source", "", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	in := schedule.AddEventInput{TaskID: *taskID}
	var err error
	if in.StartAt, err = parseTime("start", *start); err != nil {
		return nil, err
	}
	if in.EndAt, err = parseTime("end", *end); err != nil {
		return nil, err
	}
	if set(fs)["source"] {
		in.Source = source
	}
	return a.Schedule.Add(ctx, in)
}

func eventGet(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a.Schedule.Get(ctx, *id)
}

func eventUpdate(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	start := fs.String("start", "", "")
	end := fs.String("end", "", "")
	source := fs.String("source", "", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	seen := set(fs)
	var p domain.EventPatch
	if seen["start"] {
		t, err := parseTime("start", *start)
		if err != nil {
			return nil, err
		}
		p.StartAt = &t
	}
	if seen["end"] {
		t, err := parseTime("end", *end)
		if err != nil {
			return nil, err
		}
		p.EndAt = &t
	}
	if seen["source"] {
		p.Source = source
	}
	return a.Schedule.Update(ctx, *id, p)
}

func eventDelete(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.Int64("id", 0, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := a.Schedule.Delete(ctx, *id); err != nil {
		return nil, err
	}
	return map[string]any{"event_id": *id, "deleted": true}, nil
}

func eventList(ctx context.Context, a *app.App, fs *flag.FlagSet, args []string) (any, error) {
	taskID := fs.Int64("task", 0, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	events := []domain.ScheduleEvent{}
	for ev, err := range a.Schedule.ForTask(ctx, *taskID) {
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
