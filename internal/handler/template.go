package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/hila-planner/internal/domain"
)

// TemplateActivity is one activity snapshot inside a template.
type TemplateActivity struct {
	AssetID    openapi_types.UUID `json:"asset_id"`
	StartTime  string             `json:"start_time"`
	CustomNote string             `json:"custom_note"`
	SortOrder  int                `json:"sort_order"`
}

// Template is the wire form of domain.DayTemplate.
type Template struct {
	ID          openapi_types.UUID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Activities  []TemplateActivity `json:"activities"`
	CreatedAt   time.Time          `json:"created_at"`
}

// TemplateList is the body of GET /templates.
type TemplateList struct {
	Data []Template `json:"data"`
}

// SaveTemplateRequest is the body of POST /days/{dayId}/template.
type SaveTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadTemplateRequest is the body of POST /templates/{templateId}/load.
type LoadTemplateRequest struct {
	DayID openapi_types.UUID `json:"day_id"`
}

// SaveTemplate handles POST /days/{dayId}/template.
// A day without activities is rejected with 422.
func (s *Server) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	var body SaveTemplateRequest
	if !decodeBody(w, r, &body) {
		return
	}

	tmpl, err := s.svc.Templates.Save(r.Context(), dayID, body.Name, body.Description)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusCreated, templateToResponse(tmpl))
}

// ListTemplates handles GET /templates.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.Templates.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, "template not found")
		return
	}
	data := make([]Template, len(templates))
	for i, t := range templates {
		data[i] = templateToResponse(t)
	}
	writeJSON(w, http.StatusOK, TemplateList{Data: data})
}

// GetTemplate handles GET /templates/{templateId}.
func (s *Server) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "templateId")
	if !ok {
		return
	}
	tmpl, err := s.svc.Templates.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, templateToResponse(tmpl))
}

// DeleteTemplate handles DELETE /templates/{templateId}.
func (s *Server) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "templateId")
	if !ok {
		return
	}
	if err := s.svc.Templates.Remove(r.Context(), id); err != nil {
		s.respondError(w, r, err, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadTemplate handles POST /templates/{templateId}/load.
// The target day's activities are replaced by copies of the template's.
func (s *Server) LoadTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "templateId")
	if !ok {
		return
	}
	var body LoadTemplateRequest
	if !decodeBody(w, r, &body) {
		return
	}

	acts, err := s.svc.Templates.LoadToDay(r.Context(), id, body.DayID)
	if err != nil {
		s.respondError(w, r, err, "template or day not found")
		return
	}
	writeJSON(w, http.StatusOK, activitiesToResponse(acts))
}

func templateToResponse(t domain.DayTemplate) Template {
	resp := Template{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Activities:  make([]TemplateActivity, len(t.Activities)),
		CreatedAt:   t.CreatedAt,
	}
	for i, a := range t.Activities {
		resp.Activities[i] = TemplateActivity{
			AssetID:    a.AssetID,
			StartTime:  a.StartTime,
			CustomNote: a.CustomNote,
			SortOrder:  a.SortOrder,
		}
	}
	return resp
}
