package entity

// Company is the legal entity a commitment belongs to. Commitments keep a
// denormalized copy of its name.
type Company struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	NIT       string `gorm:"index"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt int64  `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false"`
}
