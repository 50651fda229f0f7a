package api

import (
	"net/http"
	"strings"
	"time"

	"courtline/internal/domain"
	"courtline/internal/models"
)

type bookingRequest struct {
	StudentID string `json:"student_id"`
	CoachID   string `json:"coach_id"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Type      string `json:"type"`
	Court     string `json:"court"`
	Override  bool   `json:"override"`
}

func parseSlot(date, start, end string) (time.Time, models.Clock, models.Clock, string) {
	day, err := models.ParseDate(date)
	if err != nil {
		return time.Time{}, 0, 0, "invalid date; expected YYYY-MM-DD"
	}
	s, err := models.ParseClock(start)
	if err != nil {
		return time.Time{}, 0, 0, "invalid start; expected HH:MM"
	}
	e, err := models.ParseClock(end)
	if err != nil {
		return time.Time{}, 0, 0, "invalid end; expected HH:MM"
	}
	return day, s, e, ""
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body bookingRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, start, end, msg := parseSlot(body.Date, body.Start, body.End)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	booking, err := s.bookings.Create(r.Context(), caller, domain.CreateBookingRequest{
		StudentID: body.StudentID,
		CoachID:   body.CoachID,
		Date:      day,
		Start:     start,
		End:       end,
		Type:      body.Type,
		Court:     body.Court,
		Override:  body.Override,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	from, err := models.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from is required; expected YYYY-MM-DD")
		return
	}
	to, err := models.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to is required; expected YYYY-MM-DD")
		return
	}

	bookings, err := s.bookings.List(r.Context(), caller, from, to)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	booking, err := s.bookings.Get(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleTransitionBooking(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.Transition(r.Context(), caller, r.PathValue("id"), body.Status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleRescheduleBooking(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body struct {
		Date     string `json:"date"`
		Start    string `json:"start"`
		End      string `json:"end"`
		Override bool   `json:"override"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, start, end, msg := parseSlot(body.Date, body.Start, body.End)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	booking, err := s.bookings.Reschedule(r.Context(), caller, r.PathValue("id"), day, start, end, body.Override)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	if err := s.bookings.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	att, err := s.tracker.RecordAttendance(r.Context(), caller, r.PathValue("id"), body.Status, body.Notes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	q := r.URL.Query()
	filter := domain.AttendanceFilter{
		BookingID: q.Get("booking_id"),
		Status:    q.Get("status"),
	}
	if raw := q.Get("from"); raw != "" {
		from, err := models.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from; expected YYYY-MM-DD")
			return
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := models.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to; expected YYYY-MM-DD")
			return
		}
		filter.To = to
	}

	records, err := s.tracker.ListAttendance(r.Context(), caller, filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attendance": records})
}

type profileRequest struct {
	IdentityID     string `json:"identity_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	PreferredSport string `json:"preferred_sport"`
	Notes          string `json:"notes"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body profileRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	profile, err := s.profiles.Create(r.Context(), caller, &models.Profile{
		IdentityID:     body.IdentityID,
		Name:           body.Name,
		Email:          body.Email,
		Phone:          body.Phone,
		Role:           body.Role,
		PreferredSport: body.PreferredSport,
		Notes:          body.Notes,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	profiles, err := s.profiles.List(r.Context(), caller)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	profile, err := s.profiles.Get(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body profileRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profile, err := s.profiles.Update(r.Context(), caller, &models.Profile{
		ID:             r.PathValue("id"),
		Name:           body.Name,
		Email:          body.Email,
		Phone:          body.Phone,
		Role:           body.Role,
		PreferredSport: body.PreferredSport,
		Notes:          body.Notes,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	if err := s.profiles.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type windowRequest struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func (s *Server) handleSetAvailability(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body struct {
		Windows []windowRequest `json:"windows"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	windows := make([]*models.AvailabilityWindow, 0, len(body.Windows))
	for _, raw := range body.Windows {
		start, err := models.ParseClock(raw.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid window start; expected HH:MM")
			return
		}
		end, err := models.ParseClock(raw.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid window end; expected HH:MM")
			return
		}
		windows = append(windows, &models.AvailabilityWindow{
			Weekday: time.Weekday(raw.Weekday),
			Start:   start,
			End:     end,
		})
	}

	if err := s.availability.SetAvailability(r.Context(), caller, r.PathValue("id"), windows); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAvailability(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	windows, err := s.availability.ListAvailability(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"windows": windows})
}

func (s *Server) handleAddProgress(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var body struct {
		Date  string `json:"date"`
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, err := models.ParseDate(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	rec, err := s.tracker.AddProgress(r.Context(), caller, r.PathValue("id"), day, body.Notes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = models.ParseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from; expected YYYY-MM-DD")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = models.ParseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to; expected YYYY-MM-DD")
			return
		}
	}

	records := make([]*models.ProgressRecord, 0)
	for rec, err := range s.tracker.ListProgress(r.Context(), caller, r.PathValue("id"), from, to) {
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		records = append(records, rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": records})
}

func (s *Server) handleDeleteProgress(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	if err := s.tracker.DeleteProgress(r.Context(), caller, r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportSchedule(w http.ResponseWriter, r *http.Request, caller *models.Caller) {
	weekStart, err := models.ParseDate(r.URL.Query().Get("week_start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "week_start is required; expected YYYY-MM-DD")
		return
	}

	path, err := s.exporter.WeeklySchedule(r.Context(), caller, weekStart)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}
