package models

import (
	"strings"
	"time"
)

// Redeemable card statuses
const (
	CardStatusActive  = "ACTIVE"
	CardStatusUsed    = "USED"
	CardStatusExpired = "EXPIRED"
)

// RedeemableCard is a single-use prepaid code convertible to credits.
// Codes transition ACTIVE -> USED (redemption) or ACTIVE -> EXPIRED
// (lazy expiry check on access); USED and EXPIRED are terminal.
type RedeemableCard struct {
	Code         string     `gorm:"primarykey" json:"code"`
	CreditAmount int64      `gorm:"not null" json:"credit_amount"`
	Status       string     `gorm:"not null;index;default:'ACTIVE'" json:"status"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expires_at"`
	UsedBy       *string    `json:"used_by,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
	BatchName    string     `gorm:"index" json:"batch_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NormalizeCode strips surrounding and embedded whitespace and uppercases
// the code, so user input like " abcd-1234 " matches the stored form.
func NormalizeCode(code string) string {
	code = strings.Join(strings.Fields(code), "")
	return strings.ToUpper(code)
}
