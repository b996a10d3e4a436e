package model

import "time"

// Employee is a member of staff who can hold laptops.
type Employee struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Role            string    `gorm:"size:128;not null" json:"role"`
	Email           string    `gorm:"size:256;not null" json:"email"`
	DateJoined      time.Time `gorm:"not null" json:"dateJoined"`
	ExperienceLevel string    `gorm:"size:64" json:"experienceLevel,omitempty"`
	Age             int       `json:"age,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CandidateFeatures is what the predictor gets to know about an employee.
type CandidateFeatures struct {
	Role            string `json:"role"`
	ExperienceLevel string `json:"experienceLevel"`
	Age             int    `json:"age"`
}

// Features extracts the predictor input for e.
func (e Employee) Features() CandidateFeatures {
	return CandidateFeatures{
		Role:            e.Role,
		ExperienceLevel: e.ExperienceLevel,
		Age:             e.Age,
	}
}
