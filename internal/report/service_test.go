package report_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stepanpomazov/resource-management/internal/bitrix"
	"github.com/stepanpomazov/resource-management/internal/model"
	"github.com/stepanpomazov/resource-management/internal/report"
)

// newStubService backs a Service with a canned four-endpoint server.
func newStubService(t *testing.T, taskQueries *[]string) (*report.Service, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tasks.task.list"):
			if taskQueries != nil {
				*taskQueries = append(*taskQueries, r.URL.RawQuery)
			}
			fmt.Fprint(w, `{"result":{"tasks":[
				{"id":1,"title":"A","groupId":10,"responsibleId":5,"timeEstimate":"3600","timeSpentInLogs":"7200","status":5},
				{"id":2,"title":"B","groupId":10,"parentId":1,"responsibleId":6,"timeEstimate":"1800","timeSpentInLogs":"900","status":5}
			]}}`)
		case strings.HasSuffix(r.URL.Path, "/user.get"):
			fmt.Fprint(w, `{"result":[
				{"ID":"5","NAME":"Ann","LAST_NAME":"K","UF_DEPARTMENT":[3]},
				{"ID":"6","NAME":"Bob","LAST_NAME":"L","UF_DEPARTMENT":[4]}
			]}`)
		case strings.HasSuffix(r.URL.Path, "/sonet_group.get"):
			fmt.Fprint(w, `{"result":[{"ID":"10","NAME":"Proj"}]}`)
		case strings.HasSuffix(r.URL.Path, "/department.get"):
			fmt.Fprint(w, `{"result":[{"ID":"3","NAME":"Engineering"},{"ID":"4","NAME":"Design"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := bitrix.NewClient(bitrix.Config{
		WebhookURL:      srv.URL,
		MinCallInterval: time.Millisecond,
		QuotaBackoff:    time.Millisecond,
		Logger:          logger,
	})
	queries := bitrix.NewQueries(client, 50, 1000, logger)
	return report.NewService(queries, model.ReportConfig{}, logger), srv
}

func TestServicePlanFact(t *testing.T) {
	var taskQueries []string
	svc, _ := newStubService(t, &taskQueries)

	rows, err := svc.PlanFact(context.Background(), report.Options{
		Period:    report.PeriodMonth,
		ProjectID: 10,
	})
	if err != nil {
		t.Fatalf("PlanFact failed: %v", err)
	}

	// Two users, one task each: two details plus two summaries.
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if rows[0].UserName != "Ann K" || rows[0].ProjectName != "Proj" {
		t.Errorf("rows[0] = %+v", rows[0])
	}

	if len(taskQueries) != 1 {
		t.Fatalf("task queries = %d, want 1", len(taskQueries))
	}
	for _, want := range []string{
		"filter%5BSTATUS%5D=5",
		"filter%5BGROUP_ID%5D=10",
		"filter%5B%3E%3DCLOSED_DATE%5D=",
		"filter%5B%3C%3DCLOSED_DATE%5D=",
	} {
		if !strings.Contains(taskQueries[0], want) {
			t.Errorf("task query %q missing %q", taskQueries[0], want)
		}
	}
}

func TestServicePlanFactDepartmentNarrowsUsers(t *testing.T) {
	svc, _ := newStubService(t, nil)

	rows, err := svc.PlanFact(context.Background(), report.Options{
		Period:       report.PeriodMonth,
		DepartmentID: 3,
	})
	if err != nil {
		t.Fatalf("PlanFact failed: %v", err)
	}

	// Bob is outside department 3, so his task falls back to the
	// unassigned sentinel rather than disappearing.
	var sawAnn, sawUnassigned bool
	for _, row := range rows {
		switch row.UserName {
		case "Ann K":
			sawAnn = true
		case model.UnassignedLabel:
			sawUnassigned = true
		case "Bob L":
			t.Errorf("user outside the department kept a name: %+v", row)
		}
	}
	if !sawAnn || !sawUnassigned {
		t.Errorf("rows = %+v, want Ann K and the unassigned fallback", rows)
	}
}

func TestServiceStatusAndDateFieldOverride(t *testing.T) {
	var taskQueries []string
	svc, _ := newStubService(t, &taskQueries)

	_, err := svc.PlanFact(context.Background(), report.Options{
		Period:          report.PeriodWeek,
		CompletedStatus: 2,
		DateField:       "CREATED_DATE",
	})
	if err != nil {
		t.Fatalf("PlanFact failed: %v", err)
	}

	if len(taskQueries) != 1 {
		t.Fatalf("task queries = %d, want 1", len(taskQueries))
	}
	for _, want := range []string{
		"filter%5BSTATUS%5D=2",
		"filter%5B%3E%3DCREATED_DATE%5D=",
	} {
		if !strings.Contains(taskQueries[0], want) {
			t.Errorf("task query %q missing %q", taskQueries[0], want)
		}
	}
}

func TestServiceResourceTree(t *testing.T) {
	svc, _ := newStubService(t, nil)

	rows, err := svc.ResourceTree(context.Background(), report.Options{
		ProjectID:   10,
		DetailLevel: 1,
	})
	if err != nil {
		t.Fatalf("ResourceTree failed: %v", err)
	}

	// Root A, its subtask B, and the project total.
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0].TaskTitle != "A" || rows[0].Level != 0 {
		t.Errorf("rows[0] = %+v, want root A", rows[0])
	}
	if rows[1].SubtaskTitle != "B" || rows[1].Level != 1 {
		t.Errorf("rows[1] = %+v, want subtask B", rows[1])
	}
	if !rows[2].IsProjectTotal || !almostEqual(rows[2].ActualHours, 2.25) {
		t.Errorf("rows[2] = %+v, want project total of 2.25h actual", rows[2])
	}
}

func TestServiceFilters(t *testing.T) {
	svc, _ := newStubService(t, nil)

	projects, departments, err := svc.Filters(context.Background())
	if err != nil {
		t.Fatalf("Filters failed: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Proj" {
		t.Errorf("projects = %+v", projects)
	}
	if len(departments) != 2 {
		t.Errorf("departments = %+v", departments)
	}
}

func TestServicePropagatesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := bitrix.NewClient(bitrix.Config{
		WebhookURL:      srv.URL,
		MinCallInterval: time.Millisecond,
		Logger:          logger,
	})
	svc := report.NewService(bitrix.NewQueries(client, 50, 1000, logger), model.ReportConfig{}, logger)

	if _, err := svc.PlanFact(context.Background(), report.Options{}); err == nil {
		t.Error("PlanFact should propagate transport failures")
	}
	if !bitrix.IsTransportError(mustErr(svc, t)) {
		t.Error("expected a transport error in the chain")
	}
}

func mustErr(svc *report.Service, t *testing.T) error {
	t.Helper()
	_, err := svc.ResourceTree(context.Background(), report.Options{ProjectID: 1})
	if err == nil {
		t.Fatal("expected an error")
	}
	return err
}
