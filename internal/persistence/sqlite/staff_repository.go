package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/staff-scheduler/internal/persistence"
)

// StaffRepository implements persistence.StaffRepository using SQLite.
type StaffRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStaffRepository creates a new SQLite staff repository.
func NewStaffRepository(pool *ConnectionPool) *StaffRepository {
	return &StaffRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const staffColumns = "id, employee_id, first_name, last_name, email, phone, role, department, status, created_at, updated_at"

// CreateStaff inserts a new staff record.
func (r *StaffRepository) CreateStaff(ctx context.Context, staff persistence.Staff) error {
	if staff.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO staff (` + staffColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		staff.ID,
		staff.EmployeeID,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Phone,
		staff.Role,
		staff.Department,
		staff.Status,
		formatTime(staff.CreatedAt),
		formatTime(staff.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateStaff updates an existing staff record. EmployeeID is immutable.
func (r *StaffRepository) UpdateStaff(ctx context.Context, staff persistence.Staff) error {
	query := `
		UPDATE staff
		SET first_name = ?, last_name = ?, email = ?, phone = ?, role = ?, department = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Phone,
		staff.Role,
		staff.Department,
		staff.Status,
		formatTime(staff.UpdatedAt),
		staff.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetStaff retrieves a staff record by ID.
func (r *StaffRepository) GetStaff(ctx context.Context, id string) (persistence.Staff, error) {
	if id == "" {
		return persistence.Staff{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+staffColumns+" FROM staff WHERE id = ?", id)
	return r.scanStaff(row)
}

// GetStaffByEmail retrieves a staff record by e-mail address.
func (r *StaffRepository) GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error) {
	row := r.helper.QueryRow(ctx, "SELECT "+staffColumns+" FROM staff WHERE email = ? COLLATE NOCASE", email)
	return r.scanStaff(row)
}

// ListStaff lists staff records matching the filter, ordered by last name.
func (r *StaffRepository) ListStaff(ctx context.Context, filter persistence.StaffFilter) ([]persistence.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff"

	var conditions []string
	var args []any

	if filter.Department != "" {
		conditions = append(conditions, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY last_name ASC, first_name ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var staff []persistence.Staff
	for rows.Next() {
		record, err := r.scanStaffRows(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return staff, nil
}

// DeleteStaff removes a staff record by ID.
func (r *StaffRepository) DeleteStaff(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, "DELETE FROM staff WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *StaffRepository) scanStaff(row *sql.Row) (persistence.Staff, error) {
	staff, err := scanStaffRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Staff{}, persistence.ErrNotFound
		}
		return persistence.Staff{}, r.mapper.MapError(err)
	}
	return staff, nil
}

func (r *StaffRepository) scanStaffRows(rows *sql.Rows) (persistence.Staff, error) {
	staff, err := scanStaffRecord(rows)
	if err != nil {
		return persistence.Staff{}, r.mapper.MapError(err)
	}
	return staff, nil
}

func scanStaffRecord(scanner rowScanner) (persistence.Staff, error) {
	var staff persistence.Staff
	var createdAt, updatedAt string

	err := scanner.Scan(
		&staff.ID,
		&staff.EmployeeID,
		&staff.FirstName,
		&staff.LastName,
		&staff.Email,
		&staff.Phone,
		&staff.Role,
		&staff.Department,
		&staff.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Staff{}, err
	}

	if staff.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Staff{}, err
	}
	if staff.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Staff{}, err
	}
	return staff, nil
}
