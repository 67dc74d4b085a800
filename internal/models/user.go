package models

// User represents a registered account. Users are immutable once created.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;not null;type:varchar(100)"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null;type:varchar(255)"` // never serialized
}
