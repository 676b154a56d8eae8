package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	httpapi "github.com/mfahadasghar/flow-fund/internal/api/http"
	"github.com/mfahadasghar/flow-fund/internal/api/http/middleware"
	"github.com/mfahadasghar/flow-fund/internal/registry/domain"
	"github.com/mfahadasghar/flow-fund/internal/registry/service"
)

type Handler struct {
	svc *service.Service
}

// Register mounts the public registry surface: project reads and
// application intake.
func Register(rg *gin.RouterGroup, svc *service.Service) {
	h := &Handler{svc: svc}

	rg.GET("/projects", h.listProjects)
	rg.GET("/projects/active", h.listActiveProjects)
	rg.GET("/projects/count", h.countProjects)
	rg.GET("/projects/:id", h.getProject)

	rg.POST("/applications", middleware.RequireAccount(), h.submitApplication)
	rg.GET("/applications", h.listApplications)
	rg.GET("/applications/pending", h.listPendingApplications)
	rg.GET("/applications/count", h.countApplications)
	rg.GET("/applications/:id", h.getApplication)
	rg.GET("/applicants/:address/applications", h.listByApplicant)
}

// RegisterAdmin mounts owner-only registry operations. The
// received-funds hook lands here too unless the deployment explicitly
// opts into the original's open-hook behavior.
func RegisterAdmin(rg *gin.RouterGroup, svc *service.Service, restrictFundsRecorder bool) {
	h := &Handler{svc: svc}

	rg.POST("/projects", h.createProject)
	rg.POST("/projects/:id/deactivate", h.deactivateProject)
	rg.POST("/applications/:id/approve", h.approveApplication)
	rg.POST("/applications/:id/reject", h.rejectApplication)

	if restrictFundsRecorder {
		rg.POST("/projects/:id/received", h.recordFundsReceived)
	}
}

// RegisterOpenFundsRecorder mounts the received-funds hook without the
// API-key guard, matching the original contract's unrestricted method.
func RegisterOpenFundsRecorder(rg *gin.RouterGroup, svc *service.Service) {
	h := &Handler{svc: svc}

	rg.POST("/projects/:id/received", h.recordFundsReceived)
}

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.svc.GetAllProjects(c.Request.Context())
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) listActiveProjects(c *gin.Context) {
	items, err := h.svc.GetAllActiveProjects(c.Request.Context())
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) countProjects(c *gin.Context) {
	n, err := h.svc.GetTotalProjects(c.Request.Context())
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": n})
}

func (h *Handler) getProject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	p, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type createProjectReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Wallet      string `json:"wallet"`
}

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), req.Name, req.Description, req.Wallet)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) deactivateProject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	if err := h.svc.DeactivateProject(c.Request.Context(), id); err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type recordFundsReq struct {
	Amount string `json:"amount"`
}

func (h *Handler) recordFundsReceived(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	var req recordFundsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	amount, err := uint256.FromDecimal(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid amount"})
		return
	}

	if err := h.svc.RecordFundsReceived(c.Request.Context(), id, amount); err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type submitApplicationReq struct {
	OrganizationName string `json:"organization_name"`
	EIN              string `json:"ein"`
	ContactEmail     string `json:"contact_email"`
	MissionStatement string `json:"mission_statement"`
	Wallet           string `json:"wallet"`
	DocumentsHash    string `json:"documents_hash"`
	LogoHash         string `json:"logo_hash"`
}

func (h *Handler) submitApplication(c *gin.Context) {
	var req submitApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	a, err := h.svc.SubmitApplication(c.Request.Context(), domain.SubmitApplicationRequest{
		Applicant:        middleware.AccountAddress(c),
		OrganizationName: req.OrganizationName,
		EIN:              req.EIN,
		ContactEmail:     req.ContactEmail,
		MissionStatement: req.MissionStatement,
		Wallet:           req.Wallet,
		DocumentsHash:    req.DocumentsHash,
		LogoHash:         req.LogoHash,
	})
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "application": a})
}

func (h *Handler) listApplications(c *gin.Context) {
	items, err := h.svc.GetAllApplications(c.Request.Context())
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "applications": items})
}

func (h *Handler) listPendingApplications(c *gin.Context) {
	items, err := h.svc.GetPendingApplications(c.Request.Context())
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "applications": items})
}

func (h *Handler) countApplications(c *gin.Context) {
	n, err := h.svc.GetTotalApplications(c.Request.Context())
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": n})
}

func (h *Handler) getApplication(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	a, err := h.svc.GetApplication(c.Request.Context(), id)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "application": a})
}

func (h *Handler) listByApplicant(c *gin.Context) {
	items, err := h.svc.GetApplicationsByApplicant(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "applications": items})
}

type approveReq struct {
	Description string `json:"description"`
}

func (h *Handler) approveApplication(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	var req approveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	a, p, err := h.svc.ApproveApplication(c.Request.Context(), id, req.Description)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "application": a, "project": p})
}

type rejectReq struct {
	Reason string `json:"reason"`
}

func (h *Handler) rejectApplication(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	var req rejectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	a, err := h.svc.RejectApplication(c.Request.Context(), id, req.Reason)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "application": a})
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
