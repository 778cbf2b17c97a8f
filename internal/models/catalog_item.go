package models

// CatalogItem is a sold item (saree SKU). Items are one-of-a-kind, not
// stock-counted: the existence of an item ID is the "already sold" signal.
type CatalogItem struct {
	Base
	ItemID   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"item_id"`
	ItemName string `gorm:"type:varchar(255);not null" json:"item_name"`
}
