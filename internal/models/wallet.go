// ===============================
// internal/models/wallet.go
// ===============================

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Wallet is stored at users/{uid}/wallet
type Wallet struct {
	Coins         int64 `json:"coins"`
	UpdatedAtUnix int64 `json:"updatedAtUnix"`
}

// Transaction types
const (
	TxCheckin        = "checkin"
	TxMission        = "mission"
	TxManualMission  = "manual_mission"
	TxAffiliateBonus = "affiliate_bonus"
	TxVipPurchase    = "vip_purchase"
	TxCoinPurchase   = "coin_purchase"
	TxAdminCredit    = "admin_credit"
)

// WalletTransaction is one ledger row in Postgres
type WalletTransaction struct {
	TransactionID string      `json:"transactionId" db:"transaction_id"`
	UserID        string      `json:"userId" db:"user_id"`
	Type          string      `json:"type" db:"type"`
	CoinAmount    int64       `json:"coinAmount" db:"coin_amount"`
	BalanceBefore int64       `json:"balanceBefore" db:"balance_before"`
	BalanceAfter  int64       `json:"balanceAfter" db:"balance_after"`
	Description   string      `json:"description" db:"description"`
	ReferenceID   *string     `json:"referenceId" db:"reference_id"`
	Metadata      MetadataMap `json:"metadata" db:"metadata"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
}

type MetadataMap map[string]interface{}

func (m MetadataMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *MetadataMap) Scan(value interface{}) error {
	if value == nil {
		*m = MetadataMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into MetadataMap", value)
	}
	return json.Unmarshal(bytes, m)
}

// Purchase request statuses
const (
	PurchasePending  = "pending_admin_verification"
	PurchaseApproved = "approved"
	PurchaseRejected = "rejected"
)

type CoinPurchaseRequest struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"userId" db:"user_id"`
	PackageID        string     `json:"packageId" db:"package_id"`
	CoinAmount       int64      `json:"coinAmount" db:"coin_amount"`
	PaidAmount       float64    `json:"paidAmount" db:"paid_amount"`
	PaymentReference string     `json:"paymentReference" db:"payment_reference"`
	PaymentMethod    string     `json:"paymentMethod" db:"payment_method"`
	Status           string     `json:"status" db:"status"`
	RequestedAt      time.Time  `json:"requestedAt" db:"requested_at"`
	ProcessedAt      *time.Time `json:"processedAt" db:"processed_at"`
	AdminNote        *string    `json:"adminNote" db:"admin_note"`
}

// CoinPackage is a purchasable bundle, prices in BRL
type CoinPackage struct {
	Coins int64   `json:"coins"`
	Price float64 `json:"price"`
	Name  string  `json:"name"`
}

var CoinPackages = map[string]CoinPackage{
	"coins_100":  {Coins: 100, Price: 4.90, Name: "Starter Pack"},
	"coins_500":  {Coins: 500, Price: 19.90, Name: "Popular Pack"},
	"coins_1200": {Coins: 1200, Price: 39.90, Name: "Value Pack"},
}

// WalletView is the wallet endpoint response
type WalletView struct {
	UserID string `json:"userId"`
	Wallet
}

// BuyCoinsRequest asks an admin to credit a coin package after payment
type BuyCoinsRequest struct {
	PackageID        string `json:"packageId" binding:"required"`
	PaymentReference string `json:"paymentReference" binding:"required"`
	PaymentMethod    string `json:"paymentMethod"`
}

// ProcessPurchaseRequestBody carries the admin note on approve or reject
type ProcessPurchaseRequestBody struct {
	AdminNote string `json:"adminNote"`
}

// AdminCreditRequest grants coins by hand
type AdminCreditRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Coins       int64  `json:"coins" binding:"required"`
	Description string `json:"description"`
}
