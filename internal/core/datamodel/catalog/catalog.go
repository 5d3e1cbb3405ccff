package catalog

import "time"

type Supplier struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	ContactName string    `gorm:"column:contact_name"`
	Email       string    `gorm:"column:email"`
	Phone       string    `gorm:"column:phone"`
	Website     string    `gorm:"column:website"`
	Notes       string    `gorm:"column:notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Supplier) TableName() string { return "my_suppliers" }

type Product struct {
	ID         int64     `gorm:"primaryKey"`
	UserID     int64     `gorm:"column:user_id;not null;index"`
	SupplierID *int64    `gorm:"column:supplier_id;index"`
	Name       string    `gorm:"column:name;not null"`
	SKU        string    `gorm:"column:sku"`
	CostCents  int64     `gorm:"column:cost_cents;not null;default:0"`
	PriceCents int64     `gorm:"column:price_cents;not null;default:0"`
	Notes      string    `gorm:"column:notes"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
