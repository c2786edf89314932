package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/sitegrid-go/internal/config"
	"github.com/ukaji3/sitegrid-go/internal/logger"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/parser"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/store"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/timeline"
)

// Documents is the storage the handlers need. *store.Store satisfies it.
type Documents interface {
	sitegrid.DocumentSaver
	FetchSchedule(ctx context.Context, projectID string) ([]models.TaskRecord, models.Document, error)
	FetchBudget(ctx context.Context, projectID string) ([]models.BudgetRecord, models.Document, error)
}

// SchedulePage is one page of a project's schedule.
type SchedulePage struct {
	ProjectID      int64               `json:"project_id"`
	DocumentID     int64               `json:"document_id"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []models.TaskRecord `json:"items"`
	Page           int                 `json:"page"`
	PageSize       int                 `json:"page_size"`
	TotalPages     int                 `json:"total_pages"`
	TotalItems     int                 `json:"total_items"`
	ChartHeight    int                 `json:"chart_height"`
	Weeks          []string            `json:"weeks"`
	WeeksTruncated bool                `json:"weeks_truncated,omitempty"`
}

// BudgetView is a project's budget with its column order.
type BudgetView struct {
	ProjectID  int64                 `json:"project_id"`
	DocumentID int64                 `json:"document_id"`
	UpdatedAt  time.Time             `json:"updated_at"`
	Columns    []string              `json:"columns"`
	Records    []models.BudgetRecord `json:"records"`
}

// DocumentHandler serves schedule and budget uploads and reads.
type DocumentHandler struct {
	docs     Documents
	importer *sitegrid.Importer
	cfg      config.Config
	now      func() time.Time
}

func NewDocumentHandler(docs Documents, cfg config.Config) *DocumentHandler {
	return &DocumentHandler{
		docs:     docs,
		importer: sitegrid.NewImporter(docs),
		cfg:      cfg,
		now:      time.Now,
	}
}

// UploadSchedule handles POST /api/projects/{projectID}/schedule
func (h *DocumentHandler) UploadSchedule(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, sitegrid.KindSchedule)
}

// UploadBudget handles POST /api/projects/{projectID}/budget
func (h *DocumentHandler) UploadBudget(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, sitegrid.KindBudget)
}

func (h *DocumentHandler) upload(w http.ResponseWriter, r *http.Request, kind sitegrid.Kind) {
	limit := h.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	opts := sitegrid.Options{AnchorToken: h.cfg.Import.AnchorToken}
	if anchor := strings.TrimSpace(r.FormValue("anchor")); anchor != "" {
		opts.AnchorToken = anchor
	}
	if raw := strings.TrimSpace(r.FormValue("existing_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			ErrorResponse(w, http.StatusBadRequest, "existing_id must be a positive integer")
			return
		}
		opts.ExistingID = &id
	}

	res, err := h.importer.Import(r.Context(), kind, file, header.Filename, r.PathValue("projectID"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	JSONResponse(w, http.StatusCreated, res)
}

// GetSchedule handles GET /api/projects/{projectID}/schedule
func (h *DocumentHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := queryInt(r, "page_size", h.cfg.Timeline.PageSize)
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, doc, err := h.docs.FetchSchedule(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	pager := timeline.NewPager(tasks, pageSize)
	pager.SetPage(page)
	items := pager.CurrentPageItems()
	if items == nil {
		items = []models.TaskRecord{}
	}

	layout := timeline.NewLayout(items, h.now())
	weeks := make([]string, len(layout.Weeks))
	for i, wk := range layout.Weeks {
		weeks[i] = wk.Format("2006-01-02")
	}

	JSONResponse(w, http.StatusOK, SchedulePage{
		ProjectID:      doc.ProjectID,
		DocumentID:     doc.ID,
		UpdatedAt:      doc.UpdatedAt,
		Items:          items,
		Page:           pager.CurrentPage(),
		PageSize:       pager.PageSize(),
		TotalPages:     pager.TotalPages(),
		TotalItems:     pager.TotalItems(),
		ChartHeight:    layout.Height,
		Weeks:          weeks,
		WeeksTruncated: layout.Truncated,
	})
}

// GetBudget handles GET /api/projects/{projectID}/budget
func (h *DocumentHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	records, doc, err := h.docs.FetchBudget(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []models.BudgetRecord{}
	}

	columns := []string{}
	if len(records) > 0 {
		columns = records[0].Columns
	}
	JSONResponse(w, http.StatusOK, BudgetView{
		ProjectID:  doc.ProjectID,
		DocumentID: doc.ID,
		UpdatedAt:  doc.UpdatedAt,
		Columns:    columns,
		Records:    records,
	})
}

// GetBudgetSummary handles GET /api/projects/{projectID}/budget/summary
func (h *DocumentHandler) GetBudgetSummary(w http.ResponseWriter, r *http.Request) {
	records, _, err := h.docs.FetchBudget(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, parser.SummarizeBudget(records))
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

// writeError maps pipeline and store errors to status codes. Persistence
// failures are reported with the store's own message.
func writeError(w http.ResponseWriter, err error) {
	var storeErr *store.StoreError
	switch {
	case sitegrid.IsInputError(err):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.As(err, &storeErr):
		logger.Error("store failure", "error", err)
		ErrorResponse(w, http.StatusInternalServerError, storeErr.Error())
	default:
		logger.Error("request failed", "error", err)
		ErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}
