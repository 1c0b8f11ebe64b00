// models/user.go
package models

import (
	"time"
)

// User is a node in the referral forest, or a back-office staff account when StaffRole is set
type User struct {
	ID          string    `json:"id" bson:"_id" firestore:"-"`
	FullName    string    `json:"fullName" bson:"fullName" firestore:"fullName"`
	Email       string    `json:"email" bson:"email" firestore:"email"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty" firestore:"phone,omitempty"`
	Password    string    `json:"-" bson:"password" firestore:"password"`
	Role        Role      `json:"role,omitempty" bson:"role,omitempty" firestore:"role,omitempty"`
	StaffRole   StaffRole `json:"staffRole,omitempty" bson:"staffRole,omitempty" firestore:"staffRole,omitempty"`
	ReferrerID  *string   `json:"referrerId" bson:"referrerId" firestore:"referrerId"`
	TotalIncome int64     `json:"totalIncome" bson:"totalIncome" firestore:"totalIncome"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

// IsStaff reports whether the account is a back-office account
func (u *User) IsStaff() bool {
	return u.StaffRole != ""
}

// AccessRole is the value carried in the JWT role claim
func (u *User) AccessRole() string {
	if u.IsStaff() {
		return string(u.StaffRole)
	}
	return string(u.Role)
}

type SignupRequest struct {
	FullName   string `json:"fullName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone,omitempty"`
	Password   string `json:"password" validate:"required,min=8"`
	ReferrerID string `json:"referrerId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type StaffRequest struct {
	FullName  string    `json:"fullName" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"password" validate:"required,min=8"`
	StaffRole StaffRole `json:"staffRole" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
