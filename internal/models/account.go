package models

import (
	"time"
)

// Account is a user's credit wallet. Balances are stored in the smallest
// credit unit and only mutated through the ledger repository, which bumps
// Version on every committed write.
type Account struct {
	ID          string    `gorm:"primarykey" json:"account_id"`
	Balance     int64     `gorm:"not null;default:0" json:"balance"`
	TotalEarned int64     `gorm:"not null;default:0" json:"total_earned"`
	TotalSpent  int64     `gorm:"not null;default:0" json:"total_spent"`
	Version     int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
