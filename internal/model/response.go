package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Total          int  `json:"total"`
	IncludeDeleted bool `json:"include_deleted,omitempty"`
	Page           int  `json:"page,omitempty"`
	Limit          int  `json:"limit,omitempty"`
	TotalPages     int  `json:"total_pages,omitempty"`
}

type DeleteAck struct {
	ID        string `json:"id"`
	Deleted   bool   `json:"deleted"`
	DeletedAt string `json:"deleted_at"`
	Purged    bool   `json:"purged"`
}
