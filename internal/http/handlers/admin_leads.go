// Package handlers contains the admin HTTP endpoints.
package handlers

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/studioleads/leadcapture/pkg/logging"
)

// AdminLeadsHandler serves the captured-leads views behind admin auth.
type AdminLeadsHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminLeadsHandler creates a new admin leads handler.
func NewAdminLeadsHandler(db *sql.DB, logger *logging.Logger) *AdminLeadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminLeadsHandler{
		db:     db,
		logger: logger,
	}
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message,omitempty"`
	Source    string `json:"source,omitempty"`
	Medium    string `json:"medium,omitempty"`
	Campaign  string `json:"campaign,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	CreatedAt string `json:"created_at"`
}

// LeadsListResponse represents a paginated list of leads.
type LeadsListResponse struct {
	Leads      []LeadResponse `json:"leads"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

const leadColumns = `id, name, email, phone, message, source, medium, campaign, ip_address, user_agent, created_at`

// ListLeads returns a paginated list of captured leads, newest first.
// GET /admin/leads
func (h *AdminLeadsHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	source := r.URL.Query().Get("source")
	search := r.URL.Query().Get("search")

	offset := (page - 1) * pageSize

	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM leads WHERE 1=1`
	args := []any{}
	argNum := 1

	if source != "" {
		clause := " AND source = $" + strconv.Itoa(argNum)
		query += clause
		countQuery += clause
		args = append(args, source)
		argNum++
	}
	if search != "" {
		clause := " AND (name ILIKE $" + strconv.Itoa(argNum) +
			" OR email ILIKE $" + strconv.Itoa(argNum) +
			" OR phone ILIKE $" + strconv.Itoa(argNum) + ")"
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
		argNum++
	}

	var total int
	if err := h.db.QueryRowContext(r.Context(), countQuery, args...).Scan(&total); err != nil {
		h.logger.Error("failed to count leads", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(argNum) + " OFFSET $" + strconv.Itoa(argNum+1)
	args = append(args, pageSize, offset)

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		h.logger.Error("failed to query leads", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	leads := []LeadResponse{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			h.logger.Error("failed to scan lead", "error", err)
			continue
		}
		leads = append(leads, lead)
	}

	totalPages := (total + pageSize - 1) / pageSize
	response := LeadsListResponse{
		Leads:      leads,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetLead returns one lead by id.
// GET /admin/leads/{leadID}
func (h *AdminLeadsHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		http.Error(w, "missing leadID", http.StatusBadRequest)
		return
	}

	row := h.db.QueryRowContext(r.Context(),
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, leadID)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get lead", "error", err, "lead_id", leadID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}

// ExportLeads streams every lead as a CSV download, newest first.
// GET /admin/leads/export
func (h *AdminLeadsHandler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(),
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		h.logger.Error("failed to query leads for export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "name", "email", "phone", "message", "source", "medium", "campaign", "ip_address", "user_agent", "created_at"})
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			h.logger.Error("failed to scan lead for export", "error", err)
			continue
		}
		cw.Write([]string{
			lead.ID, lead.Name, lead.Email, lead.Phone, lead.Message,
			lead.Source, lead.Medium, lead.Campaign,
			lead.IPAddress, lead.UserAgent, lead.CreatedAt,
		})
	}
	cw.Flush()
}

// LeadStatsResponse contains aggregated lead statistics.
type LeadStatsResponse struct {
	TotalLeads   int            `json:"total_leads"`
	BySource     map[string]int `json:"by_source"`
	NewThisWeek  int            `json:"new_this_week"`
	NewThisMonth int            `json:"new_this_month"`
}

// GetLeadStats returns aggregated lead statistics.
// GET /admin/leads/stats
func (h *AdminLeadsHandler) GetLeadStats(w http.ResponseWriter, r *http.Request) {
	stats := LeadStatsResponse{
		BySource: make(map[string]int),
	}

	if err := h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM leads`,
	).Scan(&stats.TotalLeads); err != nil {
		h.logger.Error("failed to count leads", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	rows, err := h.db.QueryContext(r.Context(),
		`SELECT source, COUNT(*) FROM leads GROUP BY source`,
	)
	if err != nil {
		h.logger.Error("failed to count leads by source", "error", err)
	} else {
		defer rows.Close()
		for rows.Next() {
			var source string
			var count int
			if err := rows.Scan(&source, &count); err != nil {
				h.logger.Error("failed to scan source count", "error", err)
				continue
			}
			stats.BySource[source] = count
		}
		if err := rows.Err(); err != nil {
			h.logger.Error("source count iteration failed", "error", err)
		}
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM leads WHERE created_at >= $1`, weekAgo,
	).Scan(&stats.NewThisWeek); err != nil {
		h.logger.Error("failed to count leads this week", "error", err)
	}

	monthAgo := time.Now().AddDate(0, -1, 0)
	if err := h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM leads WHERE created_at >= $1`, monthAgo,
	).Scan(&stats.NewThisMonth); err != nil {
		h.logger.Error("failed to count leads this month", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (LeadResponse, error) {
	var lead LeadResponse
	var message, source, medium, campaign, ipAddress, userAgent sql.NullString
	var createdAt time.Time

	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone,
		&message, &source, &medium, &campaign, &ipAddress, &userAgent,
		&createdAt,
	)
	if err != nil {
		return LeadResponse{}, err
	}
	lead.Message = message.String
	lead.Source = source.String
	lead.Medium = medium.String
	lead.Campaign = campaign.String
	lead.IPAddress = ipAddress.String
	lead.UserAgent = userAgent.String
	lead.CreatedAt = createdAt.Format(time.RFC3339)
	return lead, nil
}
