package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
	txcontext "github.com/dr-roshyara/public-digit-sub005/pkg/platform/tx"
)

const (
	pgUniqueViolation = "23505"

	constraintPrimaryKey = "members_pkey"
	constraintIdentity   = "members_tenant_identity_key"
	constraintCode       = "members_tenant_code_key"
)

// expirableStatuses are the statuses the expiry sweep may move to expired.
var expirableStatuses = []string{string(models.StatusApproved), string(models.StatusActive)}

const memberColumns = `
	id, tenant_id, identity_ref, full_name, email, phone, status, geography,
	membership_code, channel, created_at, updated_at, status_changed_at, expires_at, version
`

// PostgresStore persists members in PostgreSQL. Writes join the transaction
// carried in the context, if any.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed member store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save inserts at version 0 and otherwise updates guarded by the version
// column. The partial unique indexes make the uniqueness check atomic with
// the write.
func (s *PostgresStore) Save(ctx context.Context, m *models.Member) error {
	if m.TenantID().IsZero() {
		return sentinel.ErrMissingTenant
	}
	snap := m.Snapshot()
	if snap.Version == 0 {
		return s.insert(ctx, m, snap)
	}
	return s.update(ctx, m, snap)
}

func (s *PostgresStore) insert(ctx context.Context, m *models.Member, snap models.Snapshot) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)
	`
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(snap.ID),
		string(snap.TenantID),
		nullString(string(snap.Identity)),
		snap.FullName,
		snap.Email,
		nullString(snap.Phone),
		string(snap.Status),
		nullString(snap.Geography),
		nullString(string(snap.MembershipCode)),
		string(snap.Channel),
		snap.CreatedAt,
		snap.UpdatedAt,
		snap.StatusChangedAt,
		nullTime(snap.ExpiresAt),
	)
	if err != nil {
		return translateWriteError(err, "insert member")
	}
	m.MarkPersisted(1)
	return nil
}

func (s *PostgresStore) update(ctx context.Context, m *models.Member, snap models.Snapshot) error {
	query := `
		UPDATE members SET
			identity_ref = $4,
			full_name = $5,
			email = $6,
			phone = $7,
			status = $8,
			geography = $9,
			membership_code = $10,
			updated_at = $11,
			status_changed_at = $12,
			expires_at = $13,
			version = version + 1
		WHERE tenant_id = $1 AND id = $2 AND version = $3
	`
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		string(snap.TenantID),
		uuid.UUID(snap.ID),
		snap.Version,
		nullString(string(snap.Identity)),
		snap.FullName,
		snap.Email,
		nullString(snap.Phone),
		string(snap.Status),
		nullString(snap.Geography),
		nullString(string(snap.MembershipCode)),
		snap.UpdatedAt,
		snap.StatusChangedAt,
		nullTime(snap.ExpiresAt),
	)
	if err != nil {
		return translateWriteError(err, "update member")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("member %s changed since version %d: %w", snap.ID, snap.Version, sentinel.ErrConflict)
	}
	m.MarkPersisted(snap.Version + 1)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
	if tenantID.IsZero() {
		return nil, sentinel.ErrMissingTenant
	}
	query := `SELECT ` + memberColumns + ` FROM members WHERE tenant_id = $1 AND id = $2`
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, string(tenantID), uuid.UUID(memberID))
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", memberID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ExistsByIdentity(ctx context.Context, tenantID id.TenantID, identity id.IdentityRef) (bool, error) {
	if tenantID.IsZero() {
		return false, sentinel.ErrMissingTenant
	}
	if identity.IsNil() {
		return false, nil
	}
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE tenant_id = $1 AND identity_ref = $2)`,
		string(tenantID), string(identity))
}

func (s *PostgresStore) ExistsByMembershipCode(ctx context.Context, tenantID id.TenantID, code models.MembershipCode) (bool, error) {
	if tenantID.IsZero() {
		return false, sentinel.ErrMissingTenant
	}
	if code.IsZero() {
		return false, nil
	}
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE tenant_id = $1 AND membership_code = $2)`,
		string(tenantID), string(code))
}

// MaxMembershipSequence returns the highest number issued in the tenant's
// prefix and year series, or 0 when none has been.
func (s *PostgresStore) MaxMembershipSequence(ctx context.Context, tenantID id.TenantID, prefix string, year int) (int64, error) {
	if tenantID.IsZero() {
		return 0, sentinel.ErrMissingTenant
	}
	series := models.MembershipCodeSeries(prefix, year)
	query := `
		SELECT COALESCE(MAX(CAST(substr(membership_code, $3) AS BIGINT)), 0)
		FROM members
		WHERE tenant_id = $1 AND membership_code LIKE $2`
	var highest int64
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, string(tenantID), series+"%", len(series)+1).Scan(&highest); err != nil {
		return 0, fmt.Errorf("find highest membership sequence: %w", err)
	}
	return highest, nil
}

func (s *PostgresStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("check member exists: %w", err)
	}
	return found, nil
}

func (s *PostgresStore) ListDueForExpiry(ctx context.Context, tenantID id.TenantID, before time.Time, limit int) ([]*models.Member, error) {
	if tenantID.IsZero() {
		return nil, sentinel.ErrMissingTenant
	}
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE tenant_id = $1
		  AND status = ANY($2)
		  AND expires_at IS NOT NULL
		  AND expires_at <= $3
		ORDER BY expires_at, id
		LIMIT $4
	`
	return s.list(ctx, query, string(tenantID), pq.Array(expirableStatuses), before, limitOrAll(limit))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, tenantID id.TenantID, status models.MemberStatus, limit, offset int) ([]*models.Member, error) {
	if tenantID.IsZero() {
		return nil, sentinel.ErrMissingTenant
	}
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4
	`
	return s.list(ctx, query, string(tenantID), string(status), limitOrAll(limit), offset)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Member, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	out := []*models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	var (
		memberID    uuid.UUID
		tenantID    string
		identityRef sql.NullString
		phone       sql.NullString
		status      string
		geography   sql.NullString
		code        sql.NullString
		channel     string
		expiresAt   sql.NullTime
		snap        models.Snapshot
	)
	err := row.Scan(
		&memberID,
		&tenantID,
		&identityRef,
		&snap.FullName,
		&snap.Email,
		&phone,
		&status,
		&geography,
		&code,
		&channel,
		&snap.CreatedAt,
		&snap.UpdatedAt,
		&snap.StatusChangedAt,
		&expiresAt,
		&snap.Version,
	)
	if err != nil {
		return nil, err
	}
	snap.ID = id.MemberID(memberID)
	snap.TenantID = id.TenantID(tenantID)
	snap.Identity = id.IdentityRef(identityRef.String)
	snap.Phone = phone.String
	snap.Status = models.MemberStatus(status)
	snap.Geography = geography.String
	snap.MembershipCode = models.MembershipCode(code.String)
	snap.Channel = models.RegistrationChannel(channel)
	if expiresAt.Valid {
		at := expiresAt.Time
		snap.ExpiresAt = &at
	}
	return models.Rehydrate(snap)
}

// translateWriteError maps unique violations to store facts by constraint name.
func translateWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case constraintIdentity:
			return &UniqueViolationError{Field: FieldIdentity}
		case constraintCode:
			return &UniqueViolationError{Field: FieldMembershipCode}
		case constraintPrimaryKey:
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// limitOrAll turns a non-positive limit into SQL's LIMIT ALL.
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
