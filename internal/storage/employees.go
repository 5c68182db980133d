package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gasdash/internal/core"
)

const employeeColumns = `employee_id, employee_name, base_salary, allowance, insurance`

// CreateEmployee inserts e and returns it with its new ID.
func (r *SQLiteRepository) CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	const q = `
		INSERT INTO employees (employee_name, base_salary, allowance, insurance)
		VALUES (:employee_name, :base_salary, :allowance, :insurance)`
	res, err := r.db.NamedExecContext(ctx, q, e)
	if err != nil {
		return core.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	e.ID = id
	return e, nil
}

func (r *SQLiteRepository) UpdateEmployee(ctx context.Context, e core.Employee) error {
	const q = `
		UPDATE employees
		SET employee_name = :employee_name, base_salary = :base_salary,
		    allowance = :allowance, insurance = :insurance
		WHERE employee_id = :employee_id`
	res, err := r.db.NamedExecContext(ctx, q, e)
	if err != nil {
		return fmt.Errorf("update employee %d: %w", e.ID, err)
	}
	return expectAffected(res, core.ErrEmployeeNotFound)
}

// DeleteEmployee removes the employee and, through the foreign key, their
// attendance.
func (r *SQLiteRepository) DeleteEmployee(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE employee_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	return expectAffected(res, core.ErrEmployeeNotFound)
}

func (r *SQLiteRepository) GetEmployee(ctx context.Context, id int64) (core.Employee, error) {
	var e core.Employee
	err := r.db.GetContext(ctx, &e, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	if err != nil {
		return core.Employee{}, fmt.Errorf("get employee %d: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	employees := []core.Employee{}
	if err := r.db.SelectContext(ctx, &employees, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_name, employee_id`); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
