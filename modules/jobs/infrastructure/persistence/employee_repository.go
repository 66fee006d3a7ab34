package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

const employeeColumns = `e.id, e.tenant_id, e.first_name, e.last_name, e.hourly_rate, e.created_at`

type EmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &EmployeeRepository{}
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e    employee.Employee
		rate decimal.NullDecimal
	)
	if err := row.Scan(&e.ID, &e.TenantID, &e.FirstName, &e.LastName, &rate, &e.CreatedAt); err != nil {
		return nil, err
	}
	if rate.Valid {
		e.HourlyRate = &rate.Decimal
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees e
		WHERE `+tenancy.Visible("e")+`
		ORDER BY e.last_name, e.first_name, e.id`,
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "list employees")
	}
	defer rows.Close()

	var out []*employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "scan employee")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate employees")
	}
	return out, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	e, err := scanEmployee(tx.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees e WHERE e.id = $1 AND `+tenancy.Visible("e"),
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrNotFound
		}
		return nil, gerrors.Wrapf(err, "get employee %d", id)
	}
	return e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	var rate decimal.NullDecimal
	if e.HourlyRate != nil {
		rate = decimal.NewNullDecimal(*e.HourlyRate)
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO employees (tenant_id, first_name, last_name, hourly_rate)
		SELECT $1::uuid, $2, $3, $4
		WHERE `+tenancy.VisibleOwner("$1::uuid")+`
		RETURNING id, created_at`,
		e.TenantID, e.FirstName, e.LastName, rate,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsertNotVisible
		}
		return gerrors.Wrap(err, "create employee")
	}
	return nil
}
