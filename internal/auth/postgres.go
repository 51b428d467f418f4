package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store on PostgreSQL using row-based tenant isolation.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Identities() IdentityStore        { return &pgIdentityStore{db: s.db} }
func (s *PGStore) Tenants() TenantStore             { return &pgTenantStore{db: s.db} }
func (s *PGStore) RevokedTokens() RevokedTokenStore { return &pgRevokedTokenStore{db: s.db} }

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Identity store -----------------------------------------------------------

type pgIdentityStore struct{ db *sql.DB }

const identityColumns = `id, email, password_hash, full_name, is_active, role, tenant_id`

func scanIdentity(row interface{ Scan(...any) error }) (*Identity, error) {
	var (
		i        Identity
		fullName sql.NullString
	)
	if err := row.Scan(&i.ID, &i.Email, &i.PasswordHash, &fullName, &i.Active, &i.Role, &i.TenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	i.FullName = fullName.String
	return &i, nil
}

func (s *pgIdentityStore) Create(ctx context.Context, identity *Identity) error {
	identity.Email = strings.TrimSpace(strings.ToLower(identity.Email))
	err := s.db.QueryRowContext(ctx,
		`insert into identities(email, password_hash, full_name, is_active, role, tenant_id)
		 values($1,$2,$3,$4,$5,$6) returning id`,
		identity.Email, identity.PasswordHash, nullString(identity.FullName),
		identity.Active, identity.Role, identity.TenantID,
	).Scan(&identity.ID)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *pgIdentityStore) Find(ctx context.Context, id int64) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from identities where id=$1`, id)
	return scanIdentity(row)
}

func (s *pgIdentityStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from identities where email=$1`, email)
	return scanIdentity(row)
}

func (s *pgIdentityStore) List(ctx context.Context, offset, limit int) ([]*Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+identityColumns+` from identities order by id offset $1 limit $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, identity)
	}
	return res, rows.Err()
}

func (s *pgIdentityStore) Update(ctx context.Context, id int64, upd IdentityUpdate) (*Identity, error) {
	current, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Email != nil {
		current.Email = strings.TrimSpace(strings.ToLower(*upd.Email))
	}
	if upd.Password != nil {
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		current.PasswordHash = hash
	}
	if upd.FullName != nil {
		current.FullName = *upd.FullName
	}
	if upd.Active != nil {
		current.Active = *upd.Active
	}
	if upd.Role != nil {
		current.Role = *upd.Role
	}
	if upd.TenantID != nil {
		current.TenantID = upd.TenantID
	}
	_, err = s.db.ExecContext(ctx,
		`update identities set email=$1, password_hash=$2, full_name=$3, is_active=$4, role=$5, tenant_id=$6 where id=$7`,
		current.Email, current.PasswordHash, nullString(current.FullName),
		current.Active, current.Role, current.TenantID, id,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return current, nil
}

// Tenant store -------------------------------------------------------------

type pgTenantStore struct{ db *sql.DB }

func (s *pgTenantStore) Create(ctx context.Context, tenant *Tenant) error {
	err := s.db.QueryRowContext(ctx,
		`insert into tenants(name, schema_name, is_active) values($1,$2,$3) returning id`,
		tenant.Name, tenant.SchemaName, tenant.Active,
	).Scan(&tenant.ID)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *pgTenantStore) Find(ctx context.Context, id int64) (*Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, schema_name, is_active from tenants where id=$1`, id)
	var t Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.SchemaName, &t.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *pgTenantStore) List(ctx context.Context, offset, limit int) ([]*Tenant, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, schema_name, is_active from tenants order by id offset $1 limit $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.SchemaName, &t.Active); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (s *pgTenantStore) Update(ctx context.Context, id int64, upd TenantUpdate) (*Tenant, error) {
	current, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		current.Name = *upd.Name
	}
	if upd.SchemaName != nil {
		current.SchemaName = upd.SchemaName
	}
	if upd.Active != nil {
		current.Active = *upd.Active
	}
	_, err = s.db.ExecContext(ctx,
		`update tenants set name=$1, schema_name=$2, is_active=$3 where id=$4`,
		current.Name, current.SchemaName, current.Active, id,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return current, nil
}

// Revoked token store ------------------------------------------------------

type pgRevokedTokenStore struct{ db *sql.DB }

func (s *pgRevokedTokenStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`insert into revoked_tokens(token, expires_at) values($1,$2) on conflict (token) do nothing`,
		token, expiresAt.UTC(),
	)
	return err
}

func (s *pgRevokedTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from revoked_tokens where token=$1)`, token,
	).Scan(&exists)
	return exists, err
}

// DeleteExpired removes entries whose expiry has passed. Safe because Decode
// independently rejects expired tokens; used by the optional Sweeper.
func (s *pgRevokedTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from revoked_tokens where expires_at < $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
