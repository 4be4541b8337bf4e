package dto

import (
	"time"

	"github.com/David-999-david/man-app-server/services"
)

type AddressRequest struct {
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
	ImageDesc  string `json:"image_desc"`
}

type AddressImageResponse struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type AddressResponse struct {
	ID         uint                   `json:"id"`
	Label      string                 `json:"label"`
	Street     string                 `json:"street,omitempty"`
	City       string                 `json:"city,omitempty"`
	State      string                 `json:"state,omitempty"`
	Country    string                 `json:"country,omitempty"`
	PostalCode string                 `json:"postal_code,omitempty"`
	Images     []AddressImageResponse `json:"images"`
	CreatedAt  time.Time              `json:"created_at"`
}

func ToAddressResponse(view services.AddressView) AddressResponse {
	images := make([]AddressImageResponse, 0, len(view.Images))
	for _, image := range view.Images {
		images = append(images, AddressImageResponse{URL: image.URL, Description: image.Description})
	}

	return AddressResponse{
		ID:         view.Address.ID,
		Label:      view.Address.Label,
		Street:     view.Address.Street,
		City:       view.Address.City,
		State:      view.Address.State,
		Country:    view.Address.Country,
		PostalCode: view.Address.PostalCode,
		Images:     images,
		CreatedAt:  view.Address.CreatedAt,
	}
}
