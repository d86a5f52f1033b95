// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/shadowscan/internal/classifier"
	"github.com/tomtom215/shadowscan/internal/lifecycle"
	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/scan"
	"github.com/tomtom215/shadowscan/internal/store"
)

var t0 = time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC)

type emptySource struct{}

func (emptySource) Fetch(context.Context, string, models.Window, string, int) (scan.Batch, error) {
	return scan.Batch{}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) Alternatives(context.Context, string, string, string) ([]models.Alternative, error) {
	return []models.Alternative{{ID: "copilot-enterprise", Name: "Copilot Enterprise", Category: "llm.chat", Rank: 1}}, nil
}

type fakeApprovals struct{}

func (fakeApprovals) RequestApproval(context.Context, models.MigrationPlan) (string, error) {
	return "APR-7", nil
}

type fakeEvaluator struct {
	mu    sync.Mutex
	eval  models.Evaluation
	err   error
	calls int
}

func (f *fakeEvaluator) Evaluate(context.Context, models.EvaluationRequest) (models.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.eval, f.err
}

type fixture struct {
	svc     *Service
	st      *store.Store
	eval    *fakeEvaluator
	commits int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	a, err := risk.NewAssessor(risk.DefaultConfig())
	if err != nil {
		t.Fatalf("NewAssessor: %v", err)
	}
	reg, err := classifier.NewRegistry(classifier.DefaultSignatures())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	creds, err := classifier.NewCredentialMatcher(nil)
	if err != nil {
		t.Fatalf("NewCredentialMatcher: %v", err)
	}
	scanner, err := scan.NewScanner(scan.DefaultConfig(), classifier.New(reg, creds), a, st, emptySource{})
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	locks := lifecycle.NewLocks()
	wf, err := migration.NewWorkflow(migration.DefaultConfig(), st, fakeCatalog{}, fakeApprovals{}, a, locks)
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}

	f := &fixture{st: st, eval: &fakeEvaluator{}}
	f.svc, err = New(Deps{
		Repo:      st,
		Scanner:   scanner,
		Workflow:  wf,
		Assessor:  a,
		Evaluator: f.eval,
		Locks:     locks,
		OnCommit:  func() { f.commits++ },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.svc.now = func() time.Time { return t0 }
	return f
}

func (f *fixture) seed(t *testing.T, id string, status models.DiscoveryStatus, lastSeen time.Time, sev models.Severity) {
	t.Helper()
	d := &models.Discovery{
		ID:         id,
		TenantID:   "acme",
		ToolID:     "chatgpt",
		ToolName:   "ChatGPT",
		Category:   "llm.chat",
		Population: "u-" + id,
		Inputs: models.RiskInputs{
			DataSensitivity: 0.7, ComplianceExposure: 0.6, Source: "signature", UpdatedAt: t0.Add(-time.Hour),
		},
		RiskScore: 0.66,
		Severity:  sev,
		ScoredAt:  t0.Add(-time.Hour),
		Status:    status,
		FirstSeen: lastSeen.Add(-time.Hour),
		LastSeen:  lastSeen,
	}
	if err := f.st.Update(context.Background(), func(tx *store.Txn) error { return tx.PutDiscovery(d) }); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (f *fixture) eventTypes(t *testing.T) []string {
	t.Helper()
	pending, err := f.st.PendingEvents(context.Background(), 0)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	out := make([]string, len(pending))
	for i, e := range pending {
		out[i] = e.Event.EventType
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New with no dependencies succeeded")
	}
}

func TestLastCompleteWindow(t *testing.T) {
	now := time.Date(2026, 4, 6, 10, 37, 12, 0, time.UTC)
	w := LastCompleteWindow(now, time.Hour)
	if want := time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC); !w.Start.Equal(want) {
		t.Errorf("start = %v, want %v", w.Start, want)
	}
	if want := time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC); !w.End.Equal(want) {
		t.Errorf("end = %v, want %v", w.End, want)
	}
}

func TestTriggerScan_DefaultWindow(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.TriggerScan(context.Background(), "acme", models.Window{})
	if err != nil {
		t.Fatalf("TriggerScan: %v", err)
	}
	if want := LastCompleteWindow(t0, time.Hour); !res.Window().Equal(want) {
		t.Errorf("window = %+v, want %+v", res.Window(), want)
	}

	hist, err := f.svc.ScanHistory(context.Background(), "acme", 0)
	if err != nil {
		t.Fatalf("ScanHistory: %v", err)
	}
	if len(hist) != 1 {
		t.Errorf("history = %d results, want 1", len(hist))
	}
}

func TestTriggerScan_RequiresTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.TriggerScan(context.Background(), "", models.Window{})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestListDiscoveries(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusAssessed, t0.Add(-3*time.Hour), models.SeverityHigh)
	f.seed(t, "d2", models.StatusAssessed, t0.Add(-1*time.Hour), models.SeverityLow)
	f.seed(t, "d3", models.StatusDismissed, t0.Add(-2*time.Hour), models.SeverityHigh)

	tests := []struct {
		name   string
		filter models.DiscoveryFilter
		want   []string
		total  int
	}{
		{"newest first", models.DiscoveryFilter{}, []string{"d2", "d3", "d1"}, 3},
		{"paged", models.DiscoveryFilter{Limit: 1, Offset: 1}, []string{"d3"}, 3},
		{"offset past end", models.DiscoveryFilter{Offset: 10}, []string{}, 3},
		{"by severity", models.DiscoveryFilter{Severities: []models.Severity{models.SeverityHigh}}, []string{"d3", "d1"}, 2},
		{"by status", models.DiscoveryFilter{Statuses: []models.DiscoveryStatus{models.StatusDismissed}}, []string{"d3"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListDiscoveries(context.Background(), "acme", tt.filter)
			if err != nil {
				t.Fatalf("ListDiscoveries: %v", err)
			}
			if page.Total != tt.total {
				t.Errorf("total = %d, want %d", page.Total, tt.total)
			}
			if len(page.Items) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(page.Items), len(tt.want))
			}
			for i, id := range tt.want {
				if page.Items[i].ID != id {
					t.Errorf("item %d = %s, want %s", i, page.Items[i].ID, id)
				}
			}
		})
	}
}

func TestGetDiscovery_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetDiscovery(context.Background(), "acme", "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAssess_AppliesGovernanceVerdict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusDetected, t0, models.SeverityHigh)
	f.eval.eval = models.Evaluation{DataSensitivity: ptr(0.2), ComplianceExposure: ptr(0.1), OverrideSeverity: models.SeverityCritical}

	d, err := f.svc.Assess(context.Background(), "acme", "d1")
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if d.Status != models.StatusAssessed {
		t.Errorf("status = %s, want assessed", d.Status)
	}
	if d.Inputs.Source != models.InputSourceGovernance || d.Inputs.DataSensitivity != 0.2 {
		t.Errorf("inputs = %+v, want governance 0.2", d.Inputs)
	}
	// 0.6*0.2 + 0.4*0.1 = 0.16 bands low; the override raises it.
	if d.Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want critical", d.Severity)
	}
	if !d.ScoreFresh() {
		t.Error("score is stale after assessment")
	}
	if types := f.eventTypes(t); len(types) != 1 || types[0] != models.EventAssessed {
		t.Errorf("events = %v, want [%s]", types, models.EventAssessed)
	}
	if f.commits != 1 {
		t.Errorf("commits = %d, want 1", f.commits)
	}
}

func TestAssess_EvaluatorFailureLeavesDiscovery(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusDetected, t0, models.SeverityHigh)
	before, _ := f.svc.GetDiscovery(context.Background(), "acme", "d1")
	f.eval.err = &models.UpstreamUnavailableError{Service: "governance", Attempts: 3, Err: errors.New("503")}

	_, err := f.svc.Assess(context.Background(), "acme", "d1")
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
	after, _ := f.svc.GetDiscovery(context.Background(), "acme", "d1")
	if after.Version != before.Version || after.Status != models.StatusDetected {
		t.Errorf("discovery changed: version %d -> %d, status %s", before.Version, after.Version, after.Status)
	}
	if n := len(f.eventTypes(t)); n != 0 {
		t.Errorf("emitted %d events, want 0", n)
	}
}

func TestAssess_ClosedDiscovery(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusMigrated, t0, models.SeverityHigh)
	_, err := f.svc.Assess(context.Background(), "acme", "d1")
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
	if f.eval.calls != 0 {
		t.Errorf("evaluator called %d times for a closed discovery", f.eval.calls)
	}
}

func TestAssess_LockedDiscoveryConflicts(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusDetected, t0, models.SeverityHigh)
	release, err := f.svc.locks.TryLock("discovery", "acme", "d1")
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	defer release()

	_, err = f.svc.Assess(context.Background(), "acme", "d1")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestRecordNotification_RoutesBySeverity(t *testing.T) {
	tests := []struct {
		sev  models.Severity
		want string
	}{
		{models.SeverityCritical, "security"},
		{models.SeverityHigh, "security"},
		{models.SeverityMedium, "manager"},
		{models.SeverityLow, "user"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sev), func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, "d1", models.StatusAssessed, t0, tt.sev)
			d, err := f.svc.RecordNotification(context.Background(), "acme", "d1")
			if err != nil {
				t.Fatalf("RecordNotification: %v", err)
			}
			if d.Status != models.StatusNotified || d.NotifiedStakeholder != tt.want {
				t.Errorf("got %s/%s, want notified/%s", d.Status, d.NotifiedStakeholder, tt.want)
			}
		})
	}
}

func TestRecordNotification_FromDetected(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusDetected, t0, models.SeverityHigh)
	_, err := f.svc.RecordNotification(context.Background(), "acme", "d1")
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestMigrationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "d1", models.StatusNotified, t0, models.SeverityHigh)

	p, err := f.svc.StartMigration(ctx, "acme", "d1")
	if err != nil {
		t.Fatalf("StartMigration: %v", err)
	}
	if p.Status != models.PlanApprovalPending || p.ApprovalRef != "APR-7" {
		t.Fatalf("plan = %s/%s, want approval_pending/APR-7", p.Status, p.ApprovalRef)
	}

	if p, err = f.svc.ApprovalCallback(ctx, "acme", p.ID, ApprovalDecision{Approved: true, Reference: "APR-7"}); err != nil {
		t.Fatalf("ApprovalCallback: %v", err)
	}
	if p, err = f.svc.StartPlanWork(ctx, "acme", p.ID); err != nil {
		t.Fatalf("StartPlanWork: %v", err)
	}
	for _, step := range models.DefaultStepNames {
		if p, err = f.svc.CompleteStep(ctx, "acme", p.ID, step); err != nil {
			t.Fatalf("CompleteStep %s: %v", step, err)
		}
	}
	if p, err = f.svc.CompletePlan(ctx, "acme", p.ID); err != nil {
		t.Fatalf("CompletePlan: %v", err)
	}
	if p.Status != models.PlanCompleted {
		t.Errorf("plan status = %s, want completed", p.Status)
	}

	d, err := f.svc.GetDiscovery(ctx, "acme", "d1")
	if err != nil {
		t.Fatalf("GetDiscovery: %v", err)
	}
	if d.Status != models.StatusMigrated {
		t.Errorf("discovery status = %s, want migrated", d.Status)
	}
	if got, err := f.svc.GetPlan(ctx, "acme", p.ID); err != nil || got.Status != models.PlanCompleted {
		t.Errorf("GetPlan = %s, %v", got.Status, err)
	}
}

func TestApprovalCallback_RejectThenRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "d1", models.StatusNotified, t0, models.SeverityHigh)

	p, err := f.svc.StartMigration(ctx, "acme", "d1")
	if err != nil {
		t.Fatalf("StartMigration: %v", err)
	}
	p, err = f.svc.ApprovalCallback(ctx, "acme", p.ID, ApprovalDecision{Approved: false, Note: "vendor not approved"})
	if err != nil {
		t.Fatalf("ApprovalCallback: %v", err)
	}
	if p.Status != models.PlanRejected || p.Note != "vendor not approved" {
		t.Errorf("plan = %s %q, want rejected with note", p.Status, p.Note)
	}

	d, err := f.svc.RollbackMigration(ctx, "acme", "d1", "")
	if err != nil {
		t.Fatalf("RollbackMigration: %v", err)
	}
	if d.Status != models.StatusAssessed {
		t.Errorf("status = %s, want assessed", d.Status)
	}
}

func TestDismiss_RejectsActivePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "d1", models.StatusNotified, t0, models.SeverityHigh)
	p, err := f.svc.StartMigration(ctx, "acme", "d1")
	if err != nil {
		t.Fatalf("StartMigration: %v", err)
	}

	d, err := f.svc.Dismiss(ctx, "acme", "d1", "sanctioned by legal")
	if err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if d.Status != models.StatusDismissed || d.StatusNote != "sanctioned by legal" {
		t.Errorf("discovery = %s %q", d.Status, d.StatusNote)
	}
	got, err := f.svc.GetPlan(ctx, "acme", p.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.Status != models.PlanRejected || got.Note != dismissNote {
		t.Errorf("plan = %s %q, want rejected %q", got.Status, got.Note, dismissNote)
	}

	types := f.eventTypes(t)
	if last := types[len(types)-1]; last != models.EventDismissed {
		t.Errorf("last event = %s, want %s", last, models.EventDismissed)
	}
}

func TestDismiss_InProgressPlanExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "d1", models.StatusNotified, t0, models.SeverityHigh)
	p, err := f.svc.StartMigration(ctx, "acme", "d1")
	if err != nil {
		t.Fatalf("StartMigration: %v", err)
	}
	if _, err := f.svc.ApprovalCallback(ctx, "acme", p.ID, ApprovalDecision{Approved: true}); err != nil {
		t.Fatalf("ApprovalCallback: %v", err)
	}
	if _, err := f.svc.StartPlanWork(ctx, "acme", p.ID); err != nil {
		t.Fatalf("StartPlanWork: %v", err)
	}

	if _, err := f.svc.Dismiss(ctx, "acme", "d1", ""); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	got, _ := f.svc.GetPlan(ctx, "acme", p.ID)
	if got.Status != models.PlanExpired {
		t.Errorf("plan status = %s, want expired", got.Status)
	}
}

func TestDismiss_Closed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusDismissed, t0, models.SeverityLow)
	_, err := f.svc.Dismiss(context.Background(), "acme", "d1", "")
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestSweepExpired_NothingDue(t *testing.T) {
	f := newFixture(t)
	n, err := f.svc.SweepExpired(context.Background())
	if err != nil || n != 0 {
		t.Errorf("SweepExpired = %d, %v; want 0, nil", n, err)
	}
	if f.commits != 0 {
		t.Errorf("commits = %d, want 0", f.commits)
	}
}

func TestRiskReport(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "d1", models.StatusAssessed, t0, models.SeverityHigh)
	f.seed(t, "d2", models.StatusDismissed, t0, models.SeverityCritical)

	rep, err := f.svc.RiskReport(context.Background(), "acme")
	if err != nil {
		t.Fatalf("RiskReport: %v", err)
	}
	if rep.TotalActive != 1 {
		t.Errorf("total active = %d, want 1", rep.TotalActive)
	}
	if rep.BySeverity[models.SeverityCritical] != 0 {
		t.Errorf("dismissed discovery counted: %v", rep.BySeverity)
	}
}

func TestDashboard_PeriodBounds(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Dashboard(context.Background(), "acme", 400)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want ValidationError", err)
	}

	dash, err := f.svc.Dashboard(context.Background(), "acme", 0)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.PeriodDays != DefaultDashboardDays {
		t.Errorf("period = %d, want %d", dash.PeriodDays, DefaultDashboardDays)
	}
	if len(dash.Trend) != DefaultDashboardDays+1 {
		t.Errorf("trend has %d points, want %d", len(dash.Trend), DefaultDashboardDays+1)
	}
}

func TestBuildDashboard(t *testing.T) {
	a, err := risk.NewAssessor(risk.DefaultConfig())
	if err != nil {
		t.Fatalf("NewAssessor: %v", err)
	}
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	win := func(day, hour int, count int64) models.WindowContribution {
		start := time.Date(2026, 4, day, hour, 0, 0, 0, time.UTC)
		return models.WindowContribution{Start: start, End: start.Add(time.Hour), Count: count}
	}
	fresh := models.RiskInputs{DataSensitivity: 0.9, ComplianceExposure: 0.9}

	discoveries := []models.Discovery{
		{
			ID: "d1", ToolID: "chatgpt", ToolName: "ChatGPT", Population: "alice",
			Status: models.StatusAssessed, Severity: models.SeverityCritical, Inputs: fresh, ScoredAt: now,
			LastSeen: now.Add(-time.Hour), Windows: []models.WindowContribution{win(9, 8, 5), win(10, 8, 3)},
		},
		{
			ID: "d2", ToolID: "chatgpt", ToolName: "ChatGPT", Population: "bob",
			Status: models.StatusMigrated, Severity: models.SeverityHigh, Inputs: fresh, ScoredAt: now,
			LastSeen: now.Add(-2 * time.Hour), Windows: []models.WindowContribution{win(10, 9, 4)},
		},
		{
			ID: "d3", ToolID: "claude", ToolName: "Claude", Population: "alice",
			Status: models.StatusNotified, Severity: models.SeverityCritical, Inputs: fresh, ScoredAt: now,
			LastSeen: now.Add(-time.Hour), Windows: []models.WindowContribution{win(10, 10, 20)},
		},
		{
			ID: "old", ToolID: "gemini", Population: "carol",
			Status: models.StatusAssessed, Severity: models.SeverityLow,
			LastSeen: now.AddDate(0, 0, -30),
		},
	}
	plans := []models.MigrationPlan{
		{ID: "p1", Status: models.PlanCompleted, CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "p2", Status: models.PlanApprovalPending, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "p3", Status: models.PlanExpired, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "p4", Status: models.PlanRejected, CreatedAt: now.AddDate(0, 0, -20)},
	}

	dash := BuildDashboard(a, "acme", discoveries, plans, 7, now)

	if dash.TotalDiscoveries != 3 {
		t.Errorf("total = %d, want 3", dash.TotalDiscoveries)
	}
	if dash.ActivePopulations != 1 {
		t.Errorf("active populations = %d, want 1", dash.ActivePopulations)
	}
	if dash.BySeverity[models.SeverityCritical] != 2 || dash.BySeverity[models.SeverityLow] != 0 {
		t.Errorf("by severity = %v", dash.BySeverity)
	}
	if dash.ByStatus[models.StatusMigrated] != 1 {
		t.Errorf("by status = %v", dash.ByStatus)
	}
	wantMig := models.MigrationStats{Active: 1, Completed: 1, Expired: 1}
	if dash.Migrations != wantMig {
		t.Errorf("migrations = %+v, want %+v", dash.Migrations, wantMig)
	}
	// Two open critical discoveries.
	if want := 2 * 4_630_000.0; dash.EstimatedBreachCostUSD != want {
		t.Errorf("breach cost = %v, want %v", dash.EstimatedBreachCostUSD, want)
	}

	if len(dash.TopTools) != 2 {
		t.Fatalf("top tools = %d, want 2", len(dash.TopTools))
	}
	if dash.TopTools[0].ToolID != "claude" || dash.TopTools[0].TotalFrequency != 20 {
		t.Errorf("top tool = %s/%d, want claude/20", dash.TopTools[0].ToolID, dash.TopTools[0].TotalFrequency)
	}
	if got := dash.TopTools[1]; got.DiscoveryCount != 2 || got.TotalFrequency != 12 {
		t.Errorf("chatgpt = %d discoveries/%d, want 2/12", got.DiscoveryCount, got.TotalFrequency)
	}

	counts := make(map[string]int64)
	for _, p := range dash.Trend {
		counts[p.Date] = p.Count
	}
	if counts["2026-04-09"] != 5 || counts["2026-04-10"] != 27 || counts["2026-04-08"] != 0 {
		t.Errorf("trend = %v", counts)
	}
}
