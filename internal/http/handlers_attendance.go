package http

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
)

type employeeRequest struct {
	Name       string          `json:"name"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowance  decimal.Decimal `json:"allowance"`
	Insurance  decimal.Decimal `json:"insurance"`
}

func (req employeeRequest) employee(id int64) core.Employee {
	return core.Employee{
		ID:         id,
		Name:       sanitizeInput(req.Name),
		BaseSalary: req.BaseSalary,
		Allowance:  req.Allowance,
		Insurance:  req.Insurance,
	}
}

type presenceRequest struct {
	Date     civil.Date `json:"date"`
	Presence float64    `json:"presence"`
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Attendance.ListEmployees(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	e, err := s.svc.Attendance.CreateEmployee(r.Context(), req.employee(0))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	e, err := s.svc.Attendance.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	var req employeeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	e := req.employee(id)
	if err := s.svc.Attendance.UpdateEmployee(r.Context(), e); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.svc.Attendance.DeleteEmployee(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMonthSheet(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	year, month, err := ParseYearMonth(r)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	sheet, err := s.svc.Attendance.MonthSheet(r.Context(), id, year, month)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

// handleSaveMonth stores the posted days and answers with the updated sheet.
func (s *Server) handleSaveMonth(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	year, month, err := ParseYearMonth(r)
	if err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	var req []presenceRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	entries := make([]core.AttendanceEntry, 0, len(req))
	for _, p := range req {
		entries = append(entries, core.AttendanceEntry{EmployeeID: id, Date: p.Date, Presence: p.Presence})
	}
	if err := s.svc.Attendance.SaveMonth(r.Context(), id, year, month, entries); err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	sheet, err := s.svc.Attendance.MonthSheet(r.Context(), id, year, month)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

func (s *Server) handleAttendanceReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := ParseYearMonth(r)
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}
	rep, err := s.svc.Attendance.MonthReport(r.Context(), year, month)
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
