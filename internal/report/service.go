package report

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/stepanpomazov/resource-management/internal/bitrix"
	"github.com/stepanpomazov/resource-management/internal/model"
)

// Options is the filter set a caller supplies for a report run.
type Options struct {
	// Period selects a named date window; DateFrom/DateTo are the
	// explicit bounds for PeriodCustom (ISO date-only).
	Period   Period
	DateFrom string
	DateTo   string

	// ProjectID narrows the plan-vs-fact report to one project and
	// selects the project for the resource tree. Zero means all
	// projects for plan-vs-fact.
	ProjectID model.ID

	// DepartmentID narrows the user set; zero means all departments.
	DepartmentID model.ID

	// CompletedStatus overrides the status code meaning "completed";
	// zero falls back to the configured default.
	CompletedStatus model.ID

	// DateField overrides the task field the period filter applies to;
	// empty falls back to the configured default.
	DateField string

	// DetailLevel bounds the resource tree's expanded nesting depth.
	DetailLevel int
}

// Service orchestrates the fetches behind both reports. Aggregation
// itself is pure; everything that can fail happens here, gets logged,
// and propagates to the caller unchanged.
type Service struct {
	queries *bitrix.Queries
	logger  *slog.Logger

	completedStatus model.ID
	dateField       string
}

// NewService wires the fetch layer with the configured report defaults.
func NewService(queries *bitrix.Queries, cfg model.ReportConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	status := model.ID(cfg.CompletedStatus)
	if status == 0 {
		status = model.StatusCompleted
	}
	dateField := cfg.DateField
	if dateField == "" {
		dateField = "CLOSED_DATE"
	}
	return &Service{
		queries:         queries,
		logger:          logger,
		completedStatus: status,
		dateField:       dateField,
	}
}

// PlanFact runs the plan-vs-fact report: completed tasks within the
// resolved period, users optionally narrowed by department, projects
// for display names.
func (s *Service) PlanFact(ctx context.Context, opts Options) ([]model.PlanFactRow, error) {
	rng := Resolve(opts.Period, opts.DateFrom, opts.DateTo)

	status := opts.CompletedStatus
	if status == 0 {
		status = s.completedStatus
	}
	dateField := opts.DateField
	if dateField == "" {
		dateField = s.dateField
	}

	filter := map[string]string{
		"STATUS": strconv.FormatInt(int64(status), 10),
	}
	filter[">="+dateField] = rng.FromISO()
	filter["<="+dateField] = rng.ToISO()
	if opts.ProjectID != 0 {
		filter["GROUP_ID"] = strconv.FormatInt(int64(opts.ProjectID), 10)
	}

	tasks, users, projects, err := s.fetchInputs(ctx, filter)
	if err != nil {
		s.logger.Error("plan-vs-fact fetch failed", "error", err)
		return nil, err
	}

	users = filterByDepartment(users, opts.DepartmentID)
	return PlanVsFact(tasks, users, model.ProjectIndex(projects)), nil
}

// ResourceTree runs the hierarchy report for one project, any status.
func (s *Service) ResourceTree(ctx context.Context, opts Options) ([]model.ResourceRow, error) {
	filter := map[string]string{
		"GROUP_ID": strconv.FormatInt(int64(opts.ProjectID), 10),
	}

	tasks, users, projects, err := s.fetchInputs(ctx, filter)
	if err != nil {
		s.logger.Error("resource tree fetch failed",
			"project", opts.ProjectID, "error", err)
		return nil, err
	}

	project, ok := model.ProjectIndex(projects)[opts.ProjectID]
	if !ok {
		project = model.Project{ID: opts.ProjectID}
	}
	return ProjectResourceTree(tasks, users, project, opts.DetailLevel), nil
}

// Filters fetches the project and department lists a caller needs to
// populate its filter inputs. The two lookups are independent and
// awaited jointly.
func (s *Service) Filters(ctx context.Context) ([]model.Project, []model.Department, error) {
	var (
		projects    []model.Project
		departments []model.Department
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.queries.Projects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		departments, err = s.queries.Departments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("filter population fetch failed", "error", err)
		return nil, nil, err
	}
	return projects, departments, nil
}

// fetchInputs retrieves the three independent report inputs jointly.
// Task pages stay strictly sequential inside the task query; only the
// three top-level lookups overlap.
func (s *Service) fetchInputs(
	ctx context.Context,
	taskFilter map[string]string,
) ([]model.Task, []model.User, []model.Project, error) {
	var (
		tasks    []model.Task
		users    []model.User
		projects []model.Project
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.queries.Tasks(gctx, taskFilter)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.queries.Users(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.queries.Projects(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return tasks, users, projects, nil
}

// filterByDepartment keeps users belonging to the given department;
// a zero id keeps everyone.
func filterByDepartment(users []model.User, id model.ID) []model.User {
	if id == 0 {
		return users
	}
	kept := users[:0:0]
	for _, u := range users {
		if u.InDepartment(id) {
			kept = append(kept, u)
		}
	}
	return kept
}
