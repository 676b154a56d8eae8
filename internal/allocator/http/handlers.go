package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/mfahadasghar/flow-fund/internal/allocator/domain"
	"github.com/mfahadasghar/flow-fund/internal/allocator/service"
	httpapi "github.com/mfahadasghar/flow-fund/internal/api/http"
	"github.com/mfahadasghar/flow-fund/internal/api/http/middleware"
)

type Handler struct {
	svc      *service.Service
	treasury string
}

// Register mounts the donation surface. donate carries the per-wallet
// rate limiter in addition to identity.
func Register(rg *gin.RouterGroup, svc *service.Service, rateLimit gin.HandlerFunc) {
	h := &Handler{svc: svc}

	rg.POST("/donate", middleware.RequireAccount(), rateLimit, h.donate)
	rg.GET("/donations/:id", h.getDonation)
	rg.GET("/donors/:address/donations", h.donationsByDonor)
	rg.GET("/donors/:address/stats", h.donorStats)
	rg.GET("/projects/:id/donations", h.donationsByProject)
	rg.GET("/stats", h.totals)
}

// RegisterAdmin mounts owner-only allocator operations. treasury is
// the default sweep destination when a request names none.
func RegisterAdmin(rg *gin.RouterGroup, svc *service.Service, treasury string) {
	h := &Handler{svc: svc, treasury: treasury}

	rg.POST("/dust/sweep", h.sweepDust)
}

type donateReq struct {
	ProjectIDs  []int64 `json:"project_ids"`
	Percentages []int64 `json:"percentages"`
	Amount      string  `json:"amount"`
}

func (h *Handler) donate(c *gin.Context) {
	var req donateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	amount, err := uint256.FromDecimal(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid amount"})
		return
	}

	donor := middleware.AccountAddress(c)
	d, err := h.svc.Donate(c.Request.Context(), donor, req.ProjectIDs, req.Percentages, amount)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "donation": donationView(d)})
}

func (h *Handler) getDonation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	d, err := h.svc.GetDonation(c.Request.Context(), id)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "donation": donationView(d)})
}

func (h *Handler) donationsByDonor(c *gin.Context) {
	ids, err := h.svc.GetDonationsByDonor(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "donation_ids": ids})
}

func (h *Handler) donationsByProject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}

	ids, err := h.svc.GetDonationsByProject(c.Request.Context(), id)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "donation_ids": ids})
}

func (h *Handler) donorStats(c *gin.Context) {
	stats, err := h.svc.GetDonorStats(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": gin.H{
		"donor":         stats.Donor,
		"count":         stats.Count,
		"total_donated": stats.TotalDonated.Dec(),
	}})
}

func (h *Handler) totals(c *gin.Context) {
	t, err := h.svc.Totals(c.Request.Context())
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": gin.H{
		"total_donated":  t.TotalDonated.Dec(),
		"donation_count": t.DonationCount,
		"dust":           t.Dust.Dec(),
	}})
}

type sweepReq struct {
	To string `json:"to"`
}

func (h *Handler) sweepDust(c *gin.Context) {
	var req sweepReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	to := req.To
	if to == "" {
		to = h.treasury
	}
	swept, err := h.svc.SweepDust(c.Request.Context(), to)
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "swept": swept.Dec()})
}

// donationView renders amounts as decimal strings, the same shape the
// donation_made event carries.
func donationView(d *domain.Donation) gin.H {
	allocations := make([]string, len(d.Allocations))
	for i, a := range d.Allocations {
		allocations[i] = a.Dec()
	}
	return gin.H{
		"id":           d.ID,
		"donor":        d.Donor,
		"total_amount": d.TotalAmount.Dec(),
		"project_ids":  d.ProjectIDs,
		"allocations":  allocations,
		"timestamp":    d.Timestamp.UTC(),
	}
}
