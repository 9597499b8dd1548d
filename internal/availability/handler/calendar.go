package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"medibook/internal/availability/service"
	apperrors "medibook/pkg/errors"
	httputil "medibook/pkg/http"
	"medibook/pkg/logger"
	"medibook/pkg/middleware"
	"medibook/pkg/model"
)

const dateLayout = "2006-01-02"

type PublishScheduleRequest struct {
	DoctorID   string           `json:"doctor_id"`
	HospitalID string           `json:"hospital_id"`
	Date       string           `json:"date"`
	TimeSlots  []model.TimeSlot `json:"time_slots"`
}

type SetPublishedRequest struct {
	IsPublished bool `json:"is_published"`
}

type CalendarHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewCalendarHandler(service service.AvailabilityService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		log:     log,
	}
}

func (h *CalendarHandler) requester(w http.ResponseWriter, r *http.Request, operation string) (model.Requester, bool) {
	req, ok := middleware.RequesterFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Requester identity is missing")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", operation, "operation", "WriteError", "error", writeErr)
		}
		return model.Requester{}, false
	}
	return req, true
}

func (h *CalendarHandler) parseDate(w http.ResponseWriter, value, operation string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("date must be in %s format, got: %s", dateLayout, value))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", operation, "operation", "WriteError", "error", writeErr)
		}
		return time.Time{}, false
	}
	return date, true
}

func (h *CalendarHandler) Publish(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := h.requester(w, r, "Publish")
	if !ok {
		return
	}

	var body PublishScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Publish", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	date, ok := h.parseDate(w, body.Date, "Publish")
	if !ok {
		return
	}

	cal, err := h.service.PublishSchedule(r.Context(), req, body.DoctorID, body.HospitalID, date, body.TimeSlots)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Publish", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, cal); err != nil {
		h.log.Error("failed to write created response", "handler", "Publish", "operation", "WriteCreated", "error", err)
	}
}

func (h *CalendarHandler) GetPublished(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	date, ok := h.parseDate(w, query.Get("date"), "GetPublished")
	if !ok {
		return
	}

	cal, err := h.service.GetPublishedCalendar(r.Context(), query.Get("doctor_id"), query.Get("hospital_id"), date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetPublished", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, cal); err != nil {
		h.log.Error("failed to write success response", "handler", "GetPublished", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) ListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	date, ok := h.parseDate(w, query.Get("date"), "ListSlots")
	if !ok {
		return
	}

	slots, err := h.service.ListAvailableSlots(r.Context(), query.Get("doctor_id"), query.Get("hospital_id"), date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) GetOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := h.requester(w, r, "GetOwn")
	if !ok {
		return
	}

	query := r.URL.Query()

	from, ok := h.parseDate(w, query.Get("from"), "GetOwn")
	if !ok {
		return
	}
	to, ok := h.parseDate(w, query.Get("to"), "GetOwn")
	if !ok {
		return
	}

	calendars, err := h.service.GetOwnCalendars(r.Context(), req, query.Get("doctor_id"), from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetOwn", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, calendars); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOwn", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req, ok := h.requester(w, r, "GetByID")
	if !ok {
		return
	}

	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetByID", "operation", "WriteJSON", "error", err)
		}
		return
	}

	cal, err := h.service.GetCalendarByID(r.Context(), req, id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, cal); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) SetPublished(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req, ok := h.requester(w, r, "SetPublished")
	if !ok {
		return
	}

	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "SetPublished", "operation", "WriteJSON", "error", err)
		}
		return
	}

	var body SetPublishedRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetPublished", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	cal, err := h.service.SetPublished(r.Context(), req, id, body.IsPublished)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetPublished", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, cal); err != nil {
		h.log.Error("failed to write success response", "handler", "SetPublished", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/calendars", h.Publish)
	router.GET("/api/v1/calendars", h.GetOwn)
	router.GET("/api/v1/calendars/published", h.GetPublished)
	router.GET("/api/v1/calendars/slots", h.ListSlots)
	router.GET("/api/v1/calendars/id/:id", h.GetByID)
	router.PATCH("/api/v1/calendars/id/:id/publish", h.SetPublished)
}
