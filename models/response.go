package models

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination describes where a feed page sits in the candidate set
type Pagination struct {
	Total   int  `json:"total"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// NewPagination builds pagination info; HasMore is false once offset+limit reaches total
func NewPagination(total, offset, limit int) Pagination {
	return Pagination{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+limit < total,
	}
}

// FeedMetadata describes how a feed page was produced
type FeedMetadata struct {
	Algorithm    string            `json:"algorithm"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	UserLocation *Coordinate       `json:"userLocation,omitempty"`
	Filters      map[string]string `json:"filters,omitempty"`
}

// FeedResponse is the body of every feed endpoint
type FeedResponse struct {
	Items      []FeedItem   `json:"items"`
	Pagination Pagination   `json:"pagination"`
	Metadata   FeedMetadata `json:"metadata"`
}

// RecordInteractionRequest is the body of POST /interactions
type RecordInteractionRequest struct {
	ContentID   string   `json:"contentId" binding:"required"`
	ContentKind string   `json:"contentKind" binding:"required,oneof=spot spark"`
	Action      string   `json:"action" binding:"required,oneof=view like comment share"`
	Lat         *float64 `json:"lat" binding:"omitempty,latitude"`
	Lon         *float64 `json:"lon" binding:"omitempty,longitude"`
}

// RecordLocationRequest is the body of POST /locations
type RecordLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required,latitude"`
	Lon *float64 `json:"lon" binding:"required,longitude"`
}
