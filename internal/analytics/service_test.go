package analytics

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	svc, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, mock
}

func TestSystemMetrics(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectQuery(`select count\(\*\) from identities`).
		WillReturnRows(sqlmock.NewRows([]string{"c1", "c2", "c3", "c4"}).AddRow(10, 7, 4, 3))

	m, err := svc.System(context.Background())
	if err != nil {
		t.Fatalf("System: %v", err)
	}
	if m.TotalUsers != 10 || m.ActiveUsers != 7 || m.InactiveUsers != 3 {
		t.Errorf("user counts wrong: %+v", m)
	}
	if m.TotalTenants != 4 || m.ActiveTenants != 3 || m.InactiveTenants != 1 {
		t.Errorf("tenant counts wrong: %+v", m)
	}
}

func TestUserMetrics(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectQuery(`select role, count\(\*\) from identities group by role`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
			AddRow("superadmin", 1).
			AddRow("admin", 2).
			AddRow("user", 9))
	mock.ExpectQuery(`select count\(\*\) from identities where is_active`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery(`select coalesce\(avg\(c\),0\) from`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(3.3333))

	m, err := svc.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if m.TotalUsers != 12 || m.Superadmins != 1 || m.Admins != 2 || m.RegularUsers != 9 {
		t.Errorf("role counts wrong: %+v", m)
	}
	if m.ActiveUsers != 10 || m.InactiveUsers != 2 {
		t.Errorf("activity counts wrong: %+v", m)
	}
	if m.AverageUsersPerTenant != 3.33 {
		t.Errorf("average = %v, want 3.33 (rounded to 2 decimals)", m.AverageUsersPerTenant)
	}
}

func TestTenantMetrics(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectQuery(`select count\(\*\) from tenants`).
		WillReturnRows(sqlmock.NewRows([]string{"c1", "c2", "c3"}).AddRow(5, 4, 3))
	mock.ExpectQuery(`select coalesce\(min\(c\),0\), coalesce\(max\(c\),0\), coalesce\(avg\(c\),0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max", "avg"}).AddRow(1, 6, 2.6666))

	m, err := svc.Tenants(context.Background())
	if err != nil {
		t.Fatalf("Tenants: %v", err)
	}
	if m.TotalTenants != 5 || m.ActiveTenants != 4 || m.InactiveTenants != 1 {
		t.Errorf("tenant counts wrong: %+v", m)
	}
	if m.TenantsWithUsers != 3 || m.TenantsWithout != 2 {
		t.Errorf("distribution counts wrong: %+v", m)
	}
	if m.MinUsersPerTenant != 1 || m.MaxUsersPerTenant != 6 || m.AvgUsersPerTenant != 2.67 {
		t.Errorf("extremes wrong: %+v", m)
	}
}

func TestActivityDefaultsPeriod(t *testing.T) {
	svc, _ := newMockService(t)

	m, err := svc.Activity(context.Background(), 0)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if m.PeriodDays != 30 {
		t.Errorf("period = %d, want 30", m.PeriodDays)
	}

	m, err = svc.Activity(context.Background(), 7)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if m.PeriodDays != 7 || m.TotalLogins != 0 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

func TestNewRequiresDB(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}
