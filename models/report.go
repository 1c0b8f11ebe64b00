package models

import "time"

// DownlineMember is one user below the report subject
type DownlineMember struct {
	ID          string  `json:"id"`
	FullName    string  `json:"fullName"`
	Role        Role    `json:"role"`
	ReferrerID  *string `json:"referrerId"`
	TotalIncome int64   `json:"totalIncome"`
	Level       int     `json:"level"`
	Customers   int     `json:"customers"`
}

type DownlineReport struct {
	UserID        string           `json:"userId"`
	Role          Role             `json:"role"`
	TotalIncome   int64            `json:"totalIncome"`
	TeamSize      int              `json:"teamSize"`
	TeamIncome    int64            `json:"teamIncome"`
	OwnCustomers  int              `json:"ownCustomers"`
	TeamCustomers int              `json:"teamCustomers"`
	RoleCounts    map[Role]int     `json:"roleCounts"`
	Members       []DownlineMember `json:"members"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

type HRSection struct {
	Headcount     map[Role]int `json:"headcount"`
	StaffCount    int          `json:"staffCount"`
	RecentSignups []User       `json:"recentSignups"`
}

type RecoverySection struct {
	CustomersDistributed int   `json:"customersDistributed"`
	CustomersPending     int   `json:"customersPending"`
	TotalCommissionsPaid int64 `json:"totalCommissionsPaid"`
}

type CallCentreSection struct {
	RecentCustomers []Customer `json:"recentCustomers"`
}

type TechnicalSection struct {
	Backend   string `json:"backend"`
	Healthy   bool   `json:"healthy"`
	Error     string `json:"error,omitempty"`
	Users     int    `json:"users"`
	Customers int    `json:"customers"`
}

// Dashboard carries only the sections the viewer's role may see
type Dashboard struct {
	ViewerRole  string             `json:"viewerRole"`
	HR          *HRSection         `json:"hr,omitempty"`
	Recovery    *RecoverySection   `json:"recovery,omitempty"`
	CallCentre  *CallCentreSection `json:"callCentre,omitempty"`
	Technical   *TechnicalSection  `json:"technical,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"`
}
