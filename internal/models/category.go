package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"size:100;index" json:"name"`
	Icon      string     `gorm:"size:50" json:"icon"`
	Color     string     `gorm:"size:7;default:#6B7280" json:"color"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	IsSystem  bool       `gorm:"default:false;index" json:"is_system"`
	CreatedAt time.Time  `json:"created_at"`
}

// SystemCategories is the fixed category vocabulary the classifier predicts
// into. Seeded at startup; user-defined categories live alongside them.
var SystemCategories = []Category{
	{Name: "groceries", Icon: "shopping-cart", Color: "#22C55E"},
	{Name: "dining", Icon: "utensils", Color: "#F97316"},
	{Name: "transportation", Icon: "car", Color: "#3B82F6"},
	{Name: "utilities", Icon: "bolt", Color: "#EAB308"},
	{Name: "entertainment", Icon: "film", Color: "#A855F7"},
	{Name: "shopping", Icon: "bag-shopping", Color: "#EC4899"},
	{Name: "healthcare", Icon: "heart-pulse", Color: "#EF4444"},
	{Name: "travel", Icon: "plane", Color: "#06B6D4"},
	{Name: "subscriptions", Icon: "repeat", Color: "#8B5CF6"},
	{Name: "income", Icon: "wallet", Color: "#10B981"},
	{Name: "transfer", Icon: "arrows-rotate", Color: "#6B7280"},
	{Name: "fees", Icon: "receipt", Color: "#DC2626"},
	{Name: "other", Icon: "circle", Color: "#9CA3AF"},
}
