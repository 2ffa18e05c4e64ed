package models

// Product is an item sold in the gym shop (supplements, apparel, gear).
type Product struct {
	BaseModel
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `gorm:"index" json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}
