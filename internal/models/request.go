package models

import "time"

// ItemRequest is a want-ad: a user describes an item they need and
// owners answer by listing items against the request.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemRequestView is a request read model carrying the items offered
// in response.
type ItemRequestView struct {
	ItemRequest
	Items []*Item `json:"items"`
}
