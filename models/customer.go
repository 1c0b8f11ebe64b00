package models

import (
	"time"
)

// Customer is a token sale registered by a salesman
type Customer struct {
	ID                    string    `json:"id" bson:"_id" firestore:"-"`
	Name                  string    `json:"name" bson:"name" firestore:"name"`
	Phone                 string    `json:"phone" bson:"phone" firestore:"phone"`
	Email                 string    `json:"email,omitempty" bson:"email,omitempty" firestore:"email,omitempty"`
	Address               string    `json:"address" bson:"address" firestore:"address"`
	TokenSerial           string    `json:"tokenSerial" bson:"tokenSerial" firestore:"tokenSerial"`
	SalesmanID            string    `json:"salesmanId" bson:"salesmanId" firestore:"salesmanId"`
	SaleDate              time.Time `json:"saleDate" bson:"saleDate" firestore:"saleDate"`
	CommissionDistributed bool      `json:"commissionDistributed" bson:"commissionDistributed" firestore:"commissionDistributed"`
}

// CustomerInput is the customer part of a registration request
type CustomerInput struct {
	Name        string `json:"name" validate:"required,notblank"`
	Phone       string `json:"phone" validate:"required,notblank"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Address     string `json:"address" validate:"required,notblank"`
	TokenSerial string `json:"tokenSerial" validate:"required,notblank"`
}

// Credit is one commission increment produced by the cascade
type Credit struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	Amount int64  `json:"amount"`
}
