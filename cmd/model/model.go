package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the access level of a dashboard user.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleUser      Role = "User"
	RoleModerator Role = "Moderator"
)

var roles = []Role{RoleAdmin, RoleUser, RoleModerator}

// ParseRole matches a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// VariantStatus is the inventory state shown for a variant. It is not derived from quantity.
type VariantStatus string

const (
	StatusInStock      VariantStatus = "In Stock"
	StatusLowStock     VariantStatus = "Low Stock"
	StatusOutOfStock   VariantStatus = "Out of Stock"
	StatusDiscontinued VariantStatus = "Discontinued"
)

var statuses = []VariantStatus{StatusInStock, StatusLowStock, StatusOutOfStock, StatusDiscontinued}

func ParseVariantStatus(s string) (VariantStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

type TransactionType string

const (
	TransactionSale     TransactionType = "Sale"
	TransactionPurchase TransactionType = "Purchase"
)

func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale":
		return TransactionSale, true
	case "purchase":
		return TransactionPurchase, true
	}
	return "", false
}

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Role        Role       `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	// NameKey holds NameKey(Name) for lookups that ignore case.
	NameKey   string    `gorm:"not null;default:'';index" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Products  []Product `gorm:"constraint:OnDelete:RESTRICT" json:"products,omitempty"`
	Variants  []Variant `gorm:"constraint:OnDelete:RESTRICT" json:"variants,omitempty"`
}

// NameKey folds a category name for case-insensitive matching.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Products  []Product `gorm:"constraint:OnDelete:SET NULL" json:"products,omitempty"`
	Variants  []Variant `gorm:"constraint:OnDelete:RESTRICT" json:"variants,omitempty"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID  uint            `gorm:"not null;index" json:"categoryId"`
	Category    *Category       `json:"category,omitempty"`
	BrandID     *uint           `gorm:"index" json:"brandId"`
	Brand       *Brand          `json:"brand,omitempty"`
	Variants    []Variant       `gorm:"constraint:OnDelete:SET NULL" json:"variants,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Variant struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ProductID    *uint           `gorm:"index" json:"productId"`
	Product      *Product        `json:"product,omitempty"`
	BrandID      uint            `gorm:"not null;index" json:"brandId"`
	Brand        *Brand          `json:"brand,omitempty"`
	CategoryID   uint            `gorm:"not null;index" json:"categoryId"`
	Category     *Category       `json:"category,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	ImageURL     string          `json:"imageUrl"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	Status       VariantStatus   `gorm:"type:varchar(16);not null" json:"status"`
	Transactions []Transaction   `gorm:"constraint:OnDelete:RESTRICT" json:"transactions,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Contact   *string   `json:"contact"`
	Email     *string   `json:"email"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	VariantID uint            `gorm:"not null;index" json:"variantId"`
	Variant   *Variant        `json:"variant,omitempty"`
	Type      TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Principal is the authenticated caller carried by a session token.
type Principal struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type DashboardSummary struct {
	Users              int64         `json:"users"`
	Categories         int64         `json:"categories"`
	Brands             int64         `json:"brands"`
	Products           int64         `json:"products"`
	Variants           int64         `json:"variants"`
	Suppliers          int64         `json:"suppliers"`
	LowStockVariants   int64         `json:"lowStockVariants"`
	OutOfStockVariants int64         `json:"outOfStockVariants"`
	LatestTransactions []Transaction `json:"latestTransactions"`
}
