package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleStaff  UserRole = "STAFF"
	RoleViewer UserRole = "VIEWER"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleViewer:
		return true
	}
	return false
}

// User is a back-office account. Users survive a bulk data reset.
type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Name      string     `gorm:"not null" json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Role      UserRole   `gorm:"type:varchar(16);not null;default:'STAFF'" json:"role"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Province and District are address reference data for Thailand and Laos.
type Province struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Country   string    `gorm:"type:varchar(2);index;not null" json:"country"`
	Code      string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"code"`
	NameTh    string    `gorm:"size:255" json:"name_th"`
	NameLo    string    `gorm:"size:255" json:"name_lo"`
	NameEn    string    `gorm:"size:255;index" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`

	Districts []District `gorm:"foreignKey:ProvinceID;constraint:OnDelete:CASCADE" json:"districts,omitempty"`
}

type District struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProvinceID int64     `gorm:"index;not null" json:"province_id"`
	NameTh     string    `gorm:"size:255" json:"name_th"`
	NameLo     string    `gorm:"size:255" json:"name_lo"`
	NameEn     string    `gorm:"size:255;index" json:"name_en"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}
