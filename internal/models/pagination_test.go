package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindOptionsNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        FindOptions
		wantPage  int
		wantLimit int
	}{
		{"zero values", FindOptions{}, 1, 10},
		{"negative values", FindOptions{Page: -3, Limit: -1}, 1, 10},
		{"kept when usable", FindOptions{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		limit      int
		totalPages int
	}{
		{"exact division", 30, 10, 3},
		{"partial last page", 25, 10, 3},
		{"single short page", 4, 10, 1},
		{"no rows", 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.total, 1, tt.limit)
			assert.Equal(t, tt.total, got.Total)
			assert.Equal(t, tt.totalPages, got.TotalPages)
		})
	}
}
