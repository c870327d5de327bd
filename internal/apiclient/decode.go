package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/plantora/storefront/internal/models"
)

// The backend's collection envelope is inconsistent across endpoints:
// sometimes a bare array, sometimes an object with the collection under
// "items", "data", or a domain-named key. DecodeList keeps that
// heterogeneity at the gateway boundary by probing the known shapes in a
// fixed priority order, so services and views always receive one shape.

// ErrUnknownShape is returned when no known envelope shape matches.
var ErrUnknownShape = errors.New("unrecognized collection response shape")

// DecodeList decodes a collection response. extraKeys are endpoint-specific
// envelope keys probed after the common ones.
func DecodeList[T any](raw json.RawMessage, extraKeys ...string) ([]T, error) {
	if len(raw) == 0 {
		return nil, ErrUnknownShape
	}

	// Bare array first
	var direct []T
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, snippet(raw))
	}

	keys := append([]string{"items", "data"}, extraKeys...)
	for _, key := range keys {
		inner, ok := envelope[key]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(inner, &items); err == nil {
			return items, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownShape, snippet(raw))
}

// DecodePaged decodes a collection response together with its pagination
// metadata. Endpoints that return a bare array produce a single page.
func DecodePaged[T any](raw json.RawMessage, extraKeys ...string) ([]T, models.Page, error) {
	items, err := DecodeList[T](raw, extraKeys...)
	if err != nil {
		return nil, models.Page{}, err
	}

	page := models.Page{Number: 1, TotalItems: len(items), TotalPages: 1}
	var meta struct {
		Page       *int `json:"page"`
		Size       *int `json:"size"`
		Total      *int `json:"total"`
		TotalItems *int `json:"totalItems"`
		TotalPages *int `json:"totalPages"`
	}
	if err := json.Unmarshal(raw, &meta); err == nil {
		if meta.Page != nil {
			page.Number = *meta.Page
		}
		if meta.Size != nil {
			page.Size = *meta.Size
		}
		if meta.TotalItems != nil {
			page.TotalItems = *meta.TotalItems
		} else if meta.Total != nil {
			page.TotalItems = *meta.Total
		}
		if meta.TotalPages != nil {
			page.TotalPages = *meta.TotalPages
		}
	}
	return items, page, nil
}

func snippet(raw json.RawMessage) string {
	const max = 120
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
