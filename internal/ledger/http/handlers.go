package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	httpapi "github.com/mfahadasghar/flow-fund/internal/api/http"
	"github.com/mfahadasghar/flow-fund/internal/api/http/middleware"
	"github.com/mfahadasghar/flow-fund/internal/ledger/service"
)

type Handler struct {
	svc *service.Service
}

// Register mounts the public ledger surface.
func Register(rg *gin.RouterGroup, svc *service.Service) {
	h := &Handler{svc: svc}

	rg.GET("/balance/:address", h.balance)
	rg.GET("/allowance/:owner/:spender", h.allowance)
	rg.POST("/approve", middleware.RequireAccount(), h.approve)
	rg.POST("/transfer", middleware.RequireAccount(), h.transfer)
	rg.POST("/transfer-from", middleware.RequireAccount(), h.transferFrom)
}

// RegisterAdmin mounts owner-only ledger operations.
func RegisterAdmin(rg *gin.RouterGroup, svc *service.Service) {
	h := &Handler{svc: svc}

	rg.POST("/mint", h.mint)
}

func (h *Handler) balance(c *gin.Context) {
	amount, err := h.svc.BalanceOf(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "balance": amount.Dec()})
}

func (h *Handler) allowance(c *gin.Context) {
	amount, err := h.svc.Allowance(c.Request.Context(), c.Param("owner"), c.Param("spender"))
	if err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "allowance": amount.Dec()})
}

type approveReq struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

func (h *Handler) approve(c *gin.Context) {
	var req approveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid amount"})
		return
	}

	owner := middleware.AccountAddress(c)
	if err := h.svc.Approve(c.Request.Context(), owner, req.Spender, amount); err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type transferReq struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (h *Handler) transfer(c *gin.Context) {
	var req transferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid amount"})
		return
	}

	from := middleware.AccountAddress(c)
	if err := h.svc.Transfer(c.Request.Context(), from, req.To, amount); err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type transferFromReq struct {
	Owner  string `json:"owner"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// transferFrom spends an allowance: the authenticated caller moves
// funds out of the owner's account, up to what the owner approved.
func (h *Handler) transferFrom(c *gin.Context) {
	var req transferFromReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid amount"})
		return
	}

	spender := middleware.AccountAddress(c)
	if err := h.svc.TransferFrom(c.Request.Context(), spender, req.Owner, req.To, amount); err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type mintReq struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (h *Handler) mint(c *gin.Context) {
	var req mintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid amount"})
		return
	}

	if err := h.svc.Mint(c.Request.Context(), req.To, amount); err != nil {
		c.JSON(httpapi.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

func parseAmount(s string) (*uint256.Int, error) {
	return uint256.FromDecimal(s)
}
