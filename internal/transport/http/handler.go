package http

import (
	"encoding/json"
	"net/http"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/sirupsen/logrus"
)

// Handler exposes the core services over a JSON API.
type Handler struct {
	students    *app.StudentService
	commerce    *app.CommerceService
	progression *app.ProgressionService
	topups      *app.TopupService
	catalog     app.CatalogRepository
	hub         *app.Hub
	log         *logrus.Logger
}

func NewHandler(
	students *app.StudentService,
	commerce *app.CommerceService,
	progression *app.ProgressionService,
	topups *app.TopupService,
	catalog app.CatalogRepository,
	hub *app.Hub,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		students:    students,
		commerce:    commerce,
		progression: progression,
		topups:      topups,
		catalog:     catalog,
		hub:         hub,
		log:         log,
	}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/students", h.registerStudent)
	mux.HandleFunc("GET /api/students/{id}", h.getStudent)
	mux.HandleFunc("POST /api/students/{id}/ban", h.banStudent)
	mux.HandleFunc("GET /api/students/{id}/wallet", h.walletHistory)
	mux.HandleFunc("GET /api/students/{id}/entitlements", h.listEntitlements)
	mux.HandleFunc("GET /api/catalog", h.listCatalog)
	mux.HandleFunc("POST /api/purchases", h.purchase)
	mux.HandleFunc("POST /api/exams", h.submitExam)
	mux.HandleFunc("POST /api/topups", h.submitTopup)
	mux.HandleFunc("POST /api/topups/{id}/approve", h.approveTopup)
	mux.HandleFunc("POST /api/topups/{id}/reject", h.rejectTopup)
	mux.HandleFunc("GET /api/topups/pending", h.listPendingTopups)
	mux.HandleFunc("POST /api/redemptions", h.redeem)
	mux.HandleFunc("GET /ws/notifications", h.serveNotifications)
}

func (h *Handler) registerStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName      string `json:"fullName"`
		StudentNumber string `json:"studentNumber"`
		ParentNumber  string `json:"parentNumber"`
		Grade         string `json:"grade"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	student, err := h.students.Register(r.Context(), req.FullName, req.StudentNumber, req.ParentNumber, req.Grade)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, student)
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, student)
}

func (h *Handler) banStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Banned bool   `json:"banned"`
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.students.SetBanned(r.Context(), r.PathValue("id"), req.Banned, req.Reason); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"banned": req.Banned})
}

func (h *Handler) walletHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.students.WalletHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) listEntitlements(w http.ResponseWriter, r *http.Request) {
	entitlements, err := h.students.Entitlements(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entitlements)
}

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListByGrade(r.Context(), r.URL.Query().Get("grade"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Strip answer keys; clients get prompts and choices only.
	type publicQuestion struct {
		Prompt  string   `json:"prompt"`
		Choices []string `json:"choices"`
	}
	type publicItem struct {
		ID          string           `json:"id"`
		Kind        domain.ItemKind  `json:"kind"`
		Title       string           `json:"title"`
		Price       int64            `json:"price"`
		Grade       string           `json:"grade,omitempty"`
		SuccessorID string           `json:"successorId,omitempty"`
		Questions   []publicQuestion `json:"questions,omitempty"`
	}
	out := make([]publicItem, 0, len(items))
	for _, item := range items {
		p := publicItem{
			ID:          item.ID,
			Kind:        item.Kind,
			Title:       item.Title,
			Price:       item.Price,
			Grade:       item.Grade,
			SuccessorID: item.SuccessorID,
		}
		for _, q := range item.Questions {
			p.Questions = append(p.Questions, publicQuestion{Prompt: q.Prompt, Choices: q.Choices})
		}
		out = append(out, p)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
		ItemID    string `json:"itemId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.StudentID == "" || req.ItemID == "" {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	entitlement, err := h.commerce.Purchase(r.Context(), req.StudentID, req.ItemID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, entitlement)
}

func (h *Handler) submitExam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
		LessonID  string `json:"lessonId"`
		Answers   []int  `json:"answers"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.StudentID == "" || req.LessonID == "" {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	result, err := h.progression.SubmitExam(r.Context(), req.StudentID, req.LessonID, req.Answers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) submitTopup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
		Amount    int64  `json:"amount"`
		ProofRef  string `json:"proofRef"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	claim, err := h.topups.SubmitClaim(r.Context(), req.StudentID, req.Amount, req.ProofRef)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, claim)
}

func (h *Handler) approveTopup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResolvedBy string `json:"resolvedBy"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	claim, err := h.topups.Approve(r.Context(), r.PathValue("id"), req.ResolvedBy)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, claim)
}

func (h *Handler) rejectTopup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResolvedBy string `json:"resolvedBy"`
		Reason     string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	claim, err := h.topups.Reject(r.Context(), r.PathValue("id"), req.ResolvedBy, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, claim)
}

func (h *Handler) listPendingTopups(w http.ResponseWriter, r *http.Request) {
	claims, err := h.topups.ListPending(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, claims)
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
		RewardID  string `json:"rewardId"`
		PointCost int64  `json:"pointCost"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.StudentID == "" || req.RewardID == "" {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	redemption, err := h.commerce.Redeem(r.Context(), req.StudentID, req.RewardID, req.PointCost)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, redemption)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("response encode failed")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

// statusOf maps the domain error taxonomy onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsShortfall(err):
		return http.StatusPaymentRequired
	case domain.IsForbidden(err):
		return http.StatusForbidden
	case domain.IsMalformed(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
