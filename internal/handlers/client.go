package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/models"
)

var clientSearchSafe = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Model(&models.Client{})
	if query != "" {
		like := "%" + strings.ToLower(clientSearchSafe.ReplaceAllString(query, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR phone LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var clients []models.Client
	if err := dbq.Preload("Guarantors").Order("id desc").Limit(pageSize).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": pageSize, "offset": offset})
}

// Create: POST /clients – optionally with guarantors inline.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		Notes      string `json:"notes"`
		Guarantors []struct {
			Name    string `json:"name"`
			Phone   string `json:"phone"`
			Address string `json:"address"`
		} `json:"guarantors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		return
	}
	client := models.Client{
		Name:    strings.TrimSpace(input.Name),
		Phone:   input.Phone,
		Address: input.Address,
		Notes:   input.Notes,
	}
	for _, g := range input.Guarantors {
		if strings.TrimSpace(g.Name) == "" {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"guarantors.name": "required"})
			return
		}
		client.Guarantors = append(client.Guarantors, models.Guarantor{
			Name:    strings.TrimSpace(g.Name),
			Phone:   g.Phone,
			Address: g.Address,
		})
	}
	if err := h.DB.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}
