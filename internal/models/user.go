package models

import "time"

// Account roles.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User is an account in the directory. Username is the primary key and is
// referenced by value from solutions and submission groups.
type User struct {
	Username   string    `gorm:"primaryKey;size:64" json:"username"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Role       string    `gorm:"size:16;not null;index" json:"role"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	ProfilePic *string   `gorm:"size:512" json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName pins the table name used by the schema.
func (User) TableName() string {
	return "users"
}

// IsTeacher reports whether the account can manage papers and grade.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
