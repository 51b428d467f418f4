// Package analytics provides read-only aggregation over identities and
// tenants. Every metric is computed by the database; nothing here mutates
// state.
package analytics

import (
	"context"
	"database/sql"
	"errors"
	"math"
)

// SystemMetrics is the high-level overview of users and tenants.
type SystemMetrics struct {
	TotalUsers      int `json:"total_users"`
	ActiveUsers     int `json:"active_users"`
	InactiveUsers   int `json:"inactive_users"`
	TotalTenants    int `json:"total_tenants"`
	ActiveTenants   int `json:"active_tenants"`
	InactiveTenants int `json:"inactive_tenants"`
}

// UserMetrics breaks users down by role and activity.
type UserMetrics struct {
	TotalUsers            int     `json:"total_users"`
	ActiveUsers           int     `json:"active_users"`
	InactiveUsers         int     `json:"inactive_users"`
	Superadmins           int     `json:"superadmins"`
	Admins                int     `json:"admins"`
	RegularUsers          int     `json:"regular_users"`
	AverageUsersPerTenant float64 `json:"average_users_per_tenant"`
}

// TenantMetrics describes tenant population and distribution.
type TenantMetrics struct {
	TotalTenants      int     `json:"total_tenants"`
	ActiveTenants     int     `json:"active_tenants"`
	InactiveTenants   int     `json:"inactive_tenants"`
	TenantsWithUsers  int     `json:"tenants_with_users"`
	TenantsWithout    int     `json:"tenants_without_users"`
	MinUsersPerTenant int     `json:"min_users_per_tenant"`
	MaxUsersPerTenant int     `json:"max_users_per_tenant"`
	AvgUsersPerTenant float64 `json:"avg_users_per_tenant"`
}

// ActivityMetrics is a placeholder structure; login tracking is not wired
// to a data source yet, so counters stay zero.
// TODO: populate from the audit log once login events land in the database.
type ActivityMetrics struct {
	PeriodDays          int     `json:"period_days"`
	TotalLogins         int     `json:"total_logins"`
	UniqueActiveUsers   int     `json:"unique_active_users"`
	AverageLoginsPerDay float64 `json:"average_logins_per_day"`
	PeakConcurrentUsers int     `json:"peak_concurrent_users"`
}

// Service runs the aggregation queries.
type Service struct {
	db *sql.DB
}

func New(db *sql.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("analytics: db is required")
	}
	return &Service{db: db}, nil
}

// System returns system-wide counts.
func (s *Service) System(ctx context.Context) (SystemMetrics, error) {
	var m SystemMetrics
	row := s.db.QueryRowContext(ctx, `
		select
			(select count(*) from identities),
			(select count(*) from identities where is_active),
			(select count(*) from tenants),
			(select count(*) from tenants where is_active)`)
	if err := row.Scan(&m.TotalUsers, &m.ActiveUsers, &m.TotalTenants, &m.ActiveTenants); err != nil {
		return SystemMetrics{}, err
	}
	m.InactiveUsers = m.TotalUsers - m.ActiveUsers
	m.InactiveTenants = m.TotalTenants - m.ActiveTenants
	return m, nil
}

// Users returns per-role counts and the average tenant population.
func (s *Service) Users(ctx context.Context) (UserMetrics, error) {
	var m UserMetrics

	rows, err := s.db.QueryContext(ctx,
		`select role, count(*) from identities group by role`)
	if err != nil {
		return UserMetrics{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			role  string
			count int
		)
		if err := rows.Scan(&role, &count); err != nil {
			return UserMetrics{}, err
		}
		switch role {
		case "superadmin":
			m.Superadmins = count
		case "admin":
			m.Admins = count
		case "user":
			m.RegularUsers = count
		}
		m.TotalUsers += count
	}
	if err := rows.Err(); err != nil {
		return UserMetrics{}, err
	}

	if err := s.db.QueryRowContext(ctx,
		`select count(*) from identities where is_active`).Scan(&m.ActiveUsers); err != nil {
		return UserMetrics{}, err
	}
	m.InactiveUsers = m.TotalUsers - m.ActiveUsers

	avg, err := s.avgUsersPerTenant(ctx)
	if err != nil {
		return UserMetrics{}, err
	}
	m.AverageUsersPerTenant = avg
	return m, nil
}

// Tenants returns tenant counts and user-distribution extremes.
func (s *Service) Tenants(ctx context.Context) (TenantMetrics, error) {
	var m TenantMetrics
	row := s.db.QueryRowContext(ctx, `
		select
			(select count(*) from tenants),
			(select count(*) from tenants where is_active),
			(select count(distinct tenant_id) from identities where tenant_id is not null)`)
	if err := row.Scan(&m.TotalTenants, &m.ActiveTenants, &m.TenantsWithUsers); err != nil {
		return TenantMetrics{}, err
	}
	m.InactiveTenants = m.TotalTenants - m.ActiveTenants
	m.TenantsWithout = m.TotalTenants - m.TenantsWithUsers

	row = s.db.QueryRowContext(ctx, `
		select coalesce(min(c),0), coalesce(max(c),0), coalesce(avg(c),0) from (
			select count(*) as c from identities
			where tenant_id is not null group by tenant_id
		) per_tenant`)
	var avg float64
	if err := row.Scan(&m.MinUsersPerTenant, &m.MaxUsersPerTenant, &avg); err != nil {
		return TenantMetrics{}, err
	}
	m.AvgUsersPerTenant = round2(avg)
	return m, nil
}

// Activity returns the activity placeholder for the requested window.
func (s *Service) Activity(ctx context.Context, days int) (ActivityMetrics, error) {
	if days <= 0 {
		days = 30
	}
	return ActivityMetrics{PeriodDays: days}, nil
}

func (s *Service) avgUsersPerTenant(ctx context.Context) (float64, error) {
	var avg float64
	err := s.db.QueryRowContext(ctx, `
		select coalesce(avg(c),0) from (
			select count(*) as c from identities
			where tenant_id is not null group by tenant_id
		) per_tenant`).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return round2(avg), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
