package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		issues []Issue
		want   []FieldError
	}{
		{
			name: "nested and empty paths",
			issues: []Issue{
				{Path: []PathSegment{Key("a"), Key("b")}, Message: "m1"},
				{Path: nil, Message: "m2"},
			},
			want: []FieldError{
				{Field: "a.b", Message: "m1"},
				{Field: "", Message: "m2"},
			},
		},
		{
			name: "index segments",
			issues: []Issue{
				{Path: []PathSegment{Key("items"), Index(0), Key("name")}, Message: "required"},
			},
			want: []FieldError{
				{Field: "items.0.name", Message: "required"},
			},
		},
		{
			name: "duplicates are kept in order",
			issues: []Issue{
				{Path: []PathSegment{Key("x")}, Message: "second"},
				{Path: []PathSegment{Key("x")}, Message: "second"},
				{Path: []PathSegment{Key("a")}, Message: "first"},
			},
			want: []FieldError{
				{Field: "x", Message: "second"},
				{Field: "x", Message: "second"},
				{Field: "a", Message: "first"},
			},
		},
		{
			name:   "no issues",
			issues: []Issue{},
			want:   []FieldError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.issues)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.issues))
		})
	}
}

type lineItem struct {
	Name string `json:"name" validate:"required"`
}

type sampleRequest struct {
	Transcript string     `json:"transcript" validate:"notblank,min=10"`
	Trade      string     `json:"trade" validate:"omitempty,oneof=plumbing electrical"`
	Items      []lineItem `json:"items" validate:"dive"`
	Internal   string     `json:"-"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	t.Run("valid struct", func(t *testing.T) {
		errs := v.Validate(sampleRequest{
			Transcript: "replace the kitchen faucet",
			Trade:      "plumbing",
			Items:      []lineItem{{Name: "faucet"}},
		})
		assert.Nil(t, errs)
	})

	t.Run("reports json field paths in order", func(t *testing.T) {
		errs := v.Validate(sampleRequest{
			Transcript: "   ",
			Trade:      "welding",
			Items:      []lineItem{{Name: "ok"}, {}},
		})
		require.Len(t, errs, 3)

		assert.Equal(t, "transcript", errs[0].Field)
		assert.Equal(t, "transcript is required", errs[0].Message)
		assert.Equal(t, "trade", errs[1].Field)
		assert.Equal(t, "trade must be one of [plumbing electrical]", errs[1].Message)
		assert.Equal(t, "items.1.name", errs[2].Field)
		assert.Equal(t, "name is required", errs[2].Message)
	})

	t.Run("min length", func(t *testing.T) {
		errs := v.Validate(sampleRequest{Transcript: "short"})
		require.Len(t, errs, 1)
		assert.Equal(t, "transcript must be at least 10 characters long", errs[0].Message)
	})
}

func TestNamespacePath(t *testing.T) {
	tests := []struct {
		ns   string
		want string
	}{
		{ns: "Req.transcript", want: "transcript"},
		{ns: "Req.scope_items[3].quantity", want: "scope_items.3.quantity"},
		{ns: "Req.meta[color]", want: "meta.color"},
		{ns: "Req.grid[1][2]", want: "grid.1.2"},
		{ns: "Req", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.ns, func(t *testing.T) {
			got := Format([]Issue{{Path: namespacePath(tt.ns)}})
			assert.Equal(t, tt.want, got[0].Field)
		})
	}
}
