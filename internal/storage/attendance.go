package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
)

type attendanceRow struct {
	EmployeeID   int64   `db:"employee_id"`
	EmployeeName string  `db:"employee_name"`
	Date         string  `db:"date"`
	Presence     float64 `db:"presence"`
}

func (row attendanceRow) entry() (core.AttendanceEntry, error) {
	d, err := civil.ParseDate(row.Date)
	if err != nil {
		return core.AttendanceEntry{}, fmt.Errorf("attendance date %q: %w", row.Date, err)
	}
	return core.AttendanceEntry{
		EmployeeID:   row.EmployeeID,
		EmployeeName: row.EmployeeName,
		Date:         d,
		Presence:     row.Presence,
	}, nil
}

// UpsertAttendance writes every entry in one transaction. An existing
// (employee, date) pair is overwritten.
func (r *SQLiteRepository) UpsertAttendance(ctx context.Context, entries []core.AttendanceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const q = `
		INSERT INTO attendance (employee_id, date, presence)
		VALUES (?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET presence = excluded.presence`
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		checked := map[int64]bool{}
		for _, e := range entries {
			if checked[e.EmployeeID] {
				continue
			}
			var exists bool
			if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM employees WHERE employee_id = ?)`, e.EmployeeID); err != nil {
				return fmt.Errorf("check employee: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: %d", core.ErrEmployeeNotFound, e.EmployeeID)
			}
			checked[e.EmployeeID] = true
		}
		stmt, err := tx.PreparexContext(ctx, q)
		if err != nil {
			return fmt.Errorf("prepare attendance upsert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.EmployeeID, e.Date.String(), e.Presence); err != nil {
				return fmt.Errorf("upsert attendance %d/%s: %w", e.EmployeeID, e.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "Attendance saved", applog.FieldRecords, len(entries))
	return nil
}

// AttendanceBetween returns stored entries with from <= date <= to. A
// non-zero employeeID restricts the result to that employee.
func (r *SQLiteRepository) AttendanceBetween(ctx context.Context, employeeID int64, from, to civil.Date) ([]core.AttendanceEntry, error) {
	q := `
		SELECT a.employee_id, e.employee_name, a.date, a.presence
		FROM attendance a
		JOIN employees e ON e.employee_id = a.employee_id
		WHERE a.date BETWEEN ? AND ?`
	args := []any{from.String(), to.String()}
	if employeeID != 0 {
		q += ` AND a.employee_id = ?`
		args = append(args, employeeID)
	}
	q += ` ORDER BY e.employee_name, a.employee_id, a.date`

	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make([]core.AttendanceEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
