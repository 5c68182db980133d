package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
)

// EmployeeStore persists employees and their attendance.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error)
	UpdateEmployee(ctx context.Context, e core.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
	GetEmployee(ctx context.Context, id int64) (core.Employee, error)
	ListEmployees(ctx context.Context) ([]core.Employee, error)
	UpsertAttendance(ctx context.Context, entries []core.AttendanceEntry) error
	AttendanceBetween(ctx context.Context, employeeID int64, from, to civil.Date) ([]core.AttendanceEntry, error)
}

type (
	// DayPresence is one cell of a monthly attendance sheet. Stored is false
	// when the value is the default for that weekday.
	DayPresence struct {
		Date     civil.Date `json:"date"`
		Sunday   bool       `json:"sunday"`
		Presence float64    `json:"presence"`
		Stored   bool       `json:"stored"`
	}

	MonthSheet struct {
		Employee core.Employee `json:"employee"`
		Year     int           `json:"year"`
		Month    time.Month    `json:"month"`
		Days     []DayPresence `json:"days"`
	}

	EmployeeMonth struct {
		EmployeeID   int64              `json:"employee_id"`
		EmployeeName string             `json:"employee_name"`
		Presence     map[string]float64 `json:"presence"`
		Total        float64            `json:"total"`
	}

	// MonthReport pivots stored attendance by employee and day. WorkDays is
	// the number of days in the month that are not Sundays.
	MonthReport struct {
		Year     int             `json:"year"`
		Month    time.Month      `json:"month"`
		Days     []civil.Date    `json:"days"`
		WorkDays int             `json:"work_days"`
		Rows     []EmployeeMonth `json:"rows"`
	}
)

type AttendanceService struct {
	store  EmployeeStore
	logger *applog.Logger
}

func NewAttendanceService(store EmployeeStore, logger *applog.Logger) *AttendanceService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &AttendanceService{store: store, logger: logger.WithComponent(applog.ComponentAttendance)}
}

func (s *AttendanceService) CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	if err := e.Validate(); err != nil {
		return core.Employee{}, err
	}
	created, err := s.store.CreateEmployee(ctx, e)
	if err != nil {
		return core.Employee{}, err
	}
	s.logger.InfoContext(ctx, "Employee created", applog.FieldEmployeeID, created.ID)
	return created, nil
}

func (s *AttendanceService) UpdateEmployee(ctx context.Context, e core.Employee) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.store.UpdateEmployee(ctx, e)
}

func (s *AttendanceService) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.store.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Employee deleted", applog.FieldEmployeeID, id)
	return nil
}

func (s *AttendanceService) GetEmployee(ctx context.Context, id int64) (core.Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *AttendanceService) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	return s.store.ListEmployees(ctx)
}

// MonthSheet returns one entry per day of the month: the stored presence
// where there is one, otherwise 1 on weekdays and 0 on Sundays.
func (s *AttendanceService) MonthSheet(ctx context.Context, employeeID int64, year int, month time.Month) (MonthSheet, error) {
	if err := validMonth(year, month); err != nil {
		return MonthSheet{}, err
	}
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return MonthSheet{}, err
	}
	days := core.MonthDays(year, month)
	stored, err := s.store.AttendanceBetween(ctx, employeeID, days[0], days[len(days)-1])
	if err != nil {
		return MonthSheet{}, err
	}
	byDate := make(map[civil.Date]float64, len(stored))
	for _, e := range stored {
		byDate[e.Date] = e.Presence
	}

	sheet := MonthSheet{Employee: emp, Year: year, Month: month, Days: make([]DayPresence, 0, len(days))}
	for _, d := range days {
		cell := DayPresence{Date: d, Sunday: core.IsSunday(d), Presence: 1}
		if cell.Sunday {
			cell.Presence = 0
		}
		if p, ok := byDate[d]; ok {
			cell.Presence, cell.Stored = p, true
		}
		sheet.Days = append(sheet.Days, cell)
	}
	return sheet, nil
}

// SaveMonth validates and stores the presence values of one employee for
// one month. Every entry must fall inside that month.
func (s *AttendanceService) SaveMonth(ctx context.Context, employeeID int64, year int, month time.Month, entries []core.AttendanceEntry) error {
	if err := validMonth(year, month); err != nil {
		return err
	}
	out := make([]core.AttendanceEntry, 0, len(entries))
	for _, e := range entries {
		e.EmployeeID = employeeID
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%s: %w", e.Date, err)
		}
		if e.Date.Year != year || e.Date.Month != month {
			return fmt.Errorf("%w: %s is outside %04d-%02d", core.ErrInvalidDate, e.Date, year, int(month))
		}
		out = append(out, e)
	}
	if err := s.store.UpsertAttendance(ctx, out); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Attendance saved",
		applog.FieldEmployeeID, employeeID,
		applog.FieldYear, year,
		applog.FieldMonth, int(month),
		applog.FieldRecords, len(out))
	return nil
}

// MonthReport pivots every stored entry of the month. Days without a stored
// value count as zero; employees without entries are left out.
func (s *AttendanceService) MonthReport(ctx context.Context, year int, month time.Month) (MonthReport, error) {
	if err := validMonth(year, month); err != nil {
		return MonthReport{}, err
	}
	days := core.MonthDays(year, month)
	entries, err := s.store.AttendanceBetween(ctx, 0, days[0], days[len(days)-1])
	if err != nil {
		return MonthReport{}, err
	}

	rep := MonthReport{Year: year, Month: month, Days: days, Rows: []EmployeeMonth{}}
	for _, d := range days {
		if !core.IsSunday(d) {
			rep.WorkDays++
		}
	}
	index := map[int64]int{}
	for _, e := range entries {
		i, ok := index[e.EmployeeID]
		if !ok {
			i = len(rep.Rows)
			index[e.EmployeeID] = i
			rep.Rows = append(rep.Rows, EmployeeMonth{
				EmployeeID:   e.EmployeeID,
				EmployeeName: e.EmployeeName,
				Presence:     make(map[string]float64, len(days)),
			})
		}
		rep.Rows[i].Presence[e.Date.String()] = e.Presence
		rep.Rows[i].Total += e.Presence
	}
	for i := range rep.Rows {
		for _, d := range days {
			if _, ok := rep.Rows[i].Presence[d.String()]; !ok {
				rep.Rows[i].Presence[d.String()] = 0
			}
		}
	}
	return rep, nil
}

func validMonth(year int, month time.Month) error {
	if year < 1 || month < time.January || month > time.December {
		return fmt.Errorf("%w: %04d-%02d", core.ErrInvalidDate, year, int(month))
	}
	return nil
}
