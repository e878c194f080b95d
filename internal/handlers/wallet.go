// ===============================
// internal/handlers/wallet.go
// ===============================

package handlers

import (
	"net/http"
	"sort"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	service   *services.WalletService
	purchases *services.PurchaseService
}

func NewWalletHandler(service *services.WalletService, purchases *services.PurchaseService) *WalletHandler {
	return &WalletHandler{service: service, purchases: purchases}
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch wallet")
		return
	}

	c.JSON(http.StatusOK, models.WalletView{UserID: userID, Wallet: *wallet})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit := parseLimit(c, "limit", 50, 200)
	transactions, err := h.service.GetTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch transactions")
		return
	}
	if transactions == nil {
		transactions = []models.WalletTransaction{}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "total": len(transactions)})
}

func (h *WalletHandler) GetCoinPackages(c *gin.Context) {
	type packageView struct {
		ID string `json:"id"`
		models.CoinPackage
	}

	packages := make([]packageView, 0, len(models.CoinPackages))
	for id, pkg := range models.CoinPackages {
		packages = append(packages, packageView{ID: id, CoinPackage: pkg})
	}
	sort.Slice(packages, func(i, j int) bool { return packages[i].Coins < packages[j].Coins })

	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func (h *WalletHandler) CreatePurchaseRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.BuyCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Package and payment reference are required"})
		return
	}

	request, err := h.purchases.CreatePurchaseRequest(c.Request.Context(), userID, req.PackageID, req.PaymentReference, req.PaymentMethod)
	if err != nil {
		respondError(c, err, "Failed to create purchase request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase request submitted",
		"request": request,
	})
}

// ===============================
// ADMIN
// ===============================

func (h *WalletHandler) GetPendingPurchases(c *gin.Context) {
	limit := parseLimit(c, "limit", 50, 200)
	requests, err := h.purchases.GetPendingPurchases(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch purchase requests")
		return
	}
	if requests == nil {
		requests = []models.CoinPurchaseRequest{}
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests, "total": len(requests)})
}

func (h *WalletHandler) ApprovePurchase(c *gin.Context) {
	h.processPurchase(c, true)
}

func (h *WalletHandler) RejectPurchase(c *gin.Context) {
	h.processPurchase(c, false)
}

func (h *WalletHandler) processPurchase(c *gin.Context, approve bool) {
	requestID := c.Param("requestId")

	var req models.ProcessPurchaseRequestBody
	// the note is optional, an empty body is fine
	_ = c.ShouldBindJSON(&req)

	if err := h.purchases.ProcessPurchaseRequest(c.Request.Context(), requestID, approve, req.AdminNote); err != nil {
		respondError(c, err, "Failed to process purchase request")
		return
	}

	status := models.PurchaseRejected
	if approve {
		status = models.PurchaseApproved
	}
	c.JSON(http.StatusOK, gin.H{"requestId": requestID, "status": status})
}

func (h *WalletHandler) AdminCredit(c *gin.Context) {
	var req models.AdminCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User and coin amount are required"})
		return
	}

	description := req.Description
	if description == "" {
		description = "Admin credit"
	}

	balance, err := h.service.Credit(c.Request.Context(), req.UserID, req.Coins, models.TxAdminCredit, description, c.GetString("userID"))
	if err != nil {
		respondError(c, err, "Failed to credit coins")
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": req.UserID, "coins": balance})
}
