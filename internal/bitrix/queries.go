package bitrix

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stepanpomazov/resource-management/internal/model"
)

// REST method names consumed by the reports.
const (
	methodUserList       = "user.get"
	methodTaskList       = "tasks.task.list"
	methodProjectList    = "sonet_group.get"
	methodDepartmentList = "department.get"
)

// taskSelect is the fixed field selection for task listings: everything
// the two reports need and nothing more.
var taskSelect = []string{
	"ID", "TITLE", "GROUP_ID", "PARENT_ID", "RESPONSIBLE_ID",
	"TIME_ESTIMATE", "TIME_SPENT_IN_LOGS", "STATUS",
	"CREATED_DATE", "CLOSED_DATE",
}

// projectSelect is the fixed field selection for project listings.
var projectSelect = []string{"ID", "NAME", "DESCRIPTION", "DATE_CREATE"}

// Queries exposes the four typed fetch operations the reports are built
// on. Each fixes its endpoint, default field selection, and default
// (empty) filter; Tasks additionally paginates.
type Queries struct {
	client   *Client
	logger   *slog.Logger
	pageSize int

	// maxRecords caps how many task records a single listing
	// accumulates. The cap deliberately truncates larger result sets
	// instead of erroring.
	maxRecords int
}

// NewQueries wraps a client with the listing defaults. pageSize and
// maxRecords fall back to 50 and 1000 when non-positive.
func NewQueries(client *Client, pageSize, maxRecords int, logger *slog.Logger) *Queries {
	if pageSize <= 0 {
		pageSize = 50
	}
	if maxRecords <= 0 {
		maxRecords = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queries{
		client:     client,
		logger:     logger,
		pageSize:   pageSize,
		maxRecords: maxRecords,
	}
}

// Users fetches user records, optionally narrowed by a filter (nil
// means no filter).
func (q *Queries) Users(ctx context.Context, filter map[string]string) ([]model.User, error) {
	raw, err := q.client.Call(ctx, methodUserList, Params{Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decoding user list: %w", err)
	}
	return users, nil
}

// Projects fetches all workgroup records.
func (q *Queries) Projects(ctx context.Context) ([]model.Project, error) {
	raw, err := q.client.Call(ctx, methodProjectList, Params{Select: projectSelect})
	if err != nil {
		return nil, fmt.Errorf("fetching projects: %w", err)
	}

	var projects []model.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("decoding project list: %w", err)
	}
	return projects, nil
}

// Departments fetches all department records.
func (q *Queries) Departments(ctx context.Context) ([]model.Department, error) {
	raw, err := q.client.Call(ctx, methodDepartmentList, Params{})
	if err != nil {
		return nil, fmt.Errorf("fetching departments: %w", err)
	}

	var departments []model.Department
	if err := json.Unmarshal(raw, &departments); err != nil {
		return nil, fmt.Errorf("decoding department list: %w", err)
	}
	return departments, nil
}

// taskPage is the task-listing result payload.
type taskPage struct {
	Tasks []model.Task `json:"tasks"`
}

// Tasks fetches task records matching the filter (nil means no filter),
// walking pages in stable ascending-id order until a short page signals
// exhaustion or the record cap is reached. Pages are strictly
// sequential: each offset depends on the previous page's size.
func (q *Queries) Tasks(ctx context.Context, filter map[string]string) ([]model.Task, error) {
	base := Params{
		Filter: filter,
		Select: taskSelect,
		Order:  map[string]string{"ID": "asc"},
	}

	var tasks []model.Task
	for start := 0; ; start += q.pageSize {
		raw, err := q.client.Call(ctx, methodTaskList, base.WithStart(start))
		if err != nil {
			return nil, fmt.Errorf("fetching tasks at offset %d: %w", start, err)
		}

		var page taskPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decoding task page at offset %d: %w", start, err)
		}

		tasks = append(tasks, page.Tasks...)

		if len(page.Tasks) < q.pageSize {
			break
		}
		if len(tasks) >= q.maxRecords {
			q.logger.Warn("task listing truncated at record cap",
				"cap", q.maxRecords, "fetched", len(tasks))
			tasks = tasks[:q.maxRecords]
			break
		}
	}
	return tasks, nil
}
