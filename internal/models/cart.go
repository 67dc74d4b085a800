package models

// CartLine associates a quantity of a product with its owner. The carts table
// has no primary key: adding the same product twice stores two rows.
type CartLine struct {
	OwnerID         uint `json:"owner_id" gorm:"column:owner_id;not null;index"`
	ProductID       uint `json:"product_id" gorm:"column:product_id;not null"`
	ProductQuantity int  `json:"product_quantity" gorm:"column:product_quantity;not null"`

	// Belongs-to associations only exist so AutoMigrate emits the foreign keys.
	Owner   *User    `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
	Product *Product `json:"-" gorm:"foreignKey:ProductID;references:ID"`
}

// TableName keeps the table name stable regardless of the struct name.
func (CartLine) TableName() string {
	return "carts"
}
