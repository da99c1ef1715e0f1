package db_models

type Account struct {
	BaseModel
	DisplayName  string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	Role         string      `gorm:"default:user"`
	Itineraries  []Itinerary `gorm:"foreignKey:AccountID"`
	Expenses     []Expense   `gorm:"foreignKey:AccountID"`
}
