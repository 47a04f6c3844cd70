package model

// swagger:model Category
type Category struct {
	BaseModel
	Name        string `gorm:"size:64;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:256" json:"imageUrl"`
	IsActive    bool   `gorm:"default:true;index" json:"isActive"`
	ParentID    *uint  `gorm:"index" json:"parentId,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// swagger:model Product
type Product struct {
	BaseModel
	Name        string `gorm:"size:128;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"` // cents
	ImageURL    string `gorm:"size:256" json:"imageUrl"`
	IsActive    bool   `gorm:"default:true;index" json:"isActive"`
	CategoryID  *uint  `gorm:"index" json:"categoryId,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
