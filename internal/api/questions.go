package api

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
	"github.com/productsiksha/pmsiksha/internal/models"
)

// Categories lists the question categories with their question counts.
// The server returns a bare array and does not require authentication.
func (c *Client) Categories() ([]models.Category, error) {
	body, err := c.get("/api/categories", false)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, apierrors.NewParseError(err.Error(), "/api/categories")
	}
	return categories, nil
}

// Companies lists the normalized company names used by the question filter,
// optionally scoped to a category and date range. The server returns a bare
// array and does not require authentication.
func (c *Client) Companies(filter models.CompanyFilter) ([]models.Company, error) {
	path := "/api/companies"

	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.FromDate != "" {
		query.Set("from_date", filter.FromDate)
	}
	if filter.ToDate != "" {
		query.Set("to_date", filter.ToDate)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	body, err := c.get(path, false)
	if err != nil {
		return nil, err
	}

	var companies []models.Company
	if err := json.Unmarshal(body, &companies); err != nil {
		return nil, apierrors.NewParseError(err.Error(), path)
	}
	return companies, nil
}

// Questions fetches a category's questions, optionally narrowed by company
// and date range. The server returns completed questions first, ordered by
// completion time, then the rest newest first.
func (c *Client) Questions(categorySlug string, filter models.QuestionFilter) (*models.QuestionList, error) {
	if categorySlug == "" {
		return nil, fmt.Errorf("category is required")
	}

	path := "/api/questions/" + url.PathEscape(categorySlug)

	query := url.Values{}
	if filter.Company != "" {
		query.Set("company", filter.Company)
	}
	if filter.FromDate != "" {
		query.Set("from_date", filter.FromDate)
	}
	if filter.ToDate != "" {
		query.Set("to_date", filter.ToDate)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	body, err := c.get(path, true)
	if err != nil {
		return nil, err
	}

	var list models.QuestionList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, apierrors.NewParseError(err.Error(), path)
	}
	return &list, nil
}

// ToggleCompletion flips a question's completion mark for the logged-in
// account and returns the new state.
func (c *Client) ToggleCompletion(questionID int) (bool, error) {
	path := fmt.Sprintf("/api/questions/%d/toggle", questionID)

	body, err := c.post(path, nil, true)
	if err != nil {
		return false, err
	}

	state := gjson.GetBytes(body, "is_completed")
	if !state.Exists() {
		return false, apierrors.NewParseError("response carries no completion state", path)
	}
	return state.Bool(), nil
}

// Health checks the backend's health endpoint. No authentication required.
func (c *Client) Health() (*models.HealthStatus, error) {
	body, err := c.get("/api/health", false)
	if err != nil {
		return nil, err
	}

	var status models.HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, apierrors.NewParseError(err.Error(), "/api/health")
	}
	return &status, nil
}
