// Package models contains data types and constants for the Product Siksha API.
package models

import (
	"strings"
	"time"
)

// User represents an authenticated account
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// AuthResult is the server's response to login and signup
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Category represents a question category with its question count
type Category struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Company represents a normalized company name for the filter dropdown
type Company struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Question represents one interview question from the catalog
type Question struct {
	ID                int    `json:"id"`
	Timestamp         string `json:"timestamp"`
	Company           string `json:"company"`
	Question          string `json:"question"`
	QuestionType      string `json:"question_type"`
	InterviewType     string `json:"interview_type"`
	Comments          string `json:"comments"`
	JobTitle          string `json:"job_title"`
	CompanyNormalized string `json:"company_normalized"`
	QuestionCategory  string `json:"question_category"`
	IsCompleted       bool   `json:"is_completed"`
	CompletedAt       string `json:"completed_at,omitempty"`
}

// QuestionList is the server's response for a category listing
type QuestionList struct {
	Category  string     `json:"category"`
	Count     int        `json:"count"`
	Questions []Question `json:"questions"`
}

// QuestionFilter narrows a category listing
type QuestionFilter struct {
	Company  string
	FromDate string // YYYY-MM-DD
	ToDate   string // YYYY-MM-DD
}

// CompanyFilter narrows the company listing
type CompanyFilter struct {
	Category string
	FromDate string // YYYY-MM-DD
	ToDate   string // YYYY-MM-DD
}

// HealthStatus is the server's health check response
type HealthStatus struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	GeminiConfigured bool   `json:"gemini_configured"`
	Database         string `json:"database"`
}

// Question timestamps come from a CSV import and appear in several layouts.
var timestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02",
}

// ParseQuestionTimestamp parses a catalog timestamp string.
// Returns the zero time and false when the string matches no known layout.
func ParseQuestionTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
