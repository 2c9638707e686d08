package validator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type thoughtRequest struct {
	Message string `json:"message" validate:"required"`
	Author  string `validate:"omitempty,max=5"`
	Ignored string `json:"-"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		input  any
		fields []string
	}{
		{
			name:  "Valid",
			input: thoughtRequest{Message: "hello"},
		},
		{
			name:   "MissingMessage",
			input:  thoughtRequest{},
			fields: []string{"message"},
		},
		{
			name:   "GoFieldName",
			input:  thoughtRequest{Message: "hello", Author: "someone"},
			fields: []string{"Author"},
		},
		{
			name:   "Both",
			input:  &thoughtRequest{Author: "someone"},
			fields: []string{"message", "Author"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateStruct(tt.input)

			var got []string
			for _, err := range errs {
				got = append(got, err.Field)
			}
			if diff := cmp.Diff(tt.fields, got); diff != "" {
				t.Errorf("ValidateStruct() fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidator_ValidateStructTag(t *testing.T) {
	errs := New().ValidateStruct(thoughtRequest{})
	if len(errs) != 1 {
		t.Fatalf("Got %d errors, want 1", len(errs))
	}
	if errs[0].Tag != "required" {
		t.Errorf("Got tag %q, want required", errs[0].Tag)
	}
	if errs[0].Message == "" {
		t.Error("Got empty message")
	}
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		value   any
		tag     string
		wantErr bool
	}{
		{
			name:  "ObjectID",
			value: "682bab8c12155b00101732ce",
			tag:   "mongodb",
		},
		{
			name:    "ObjectIDTooShort",
			value:   "682bab8c12155b",
			tag:     "mongodb",
			wantErr: true,
		},
		{
			name:    "ObjectIDNotHex",
			value:   "zzzzzzzzzzzzzzzzzzzzzzzz",
			tag:     "mongodb",
			wantErr: true,
		},
		{
			name:  "UUID",
			value: "84bd9af7-79e6-4027-b284-9d5d875efd5b",
			tag:   "uuid",
		},
		{
			name:    "UUIDMalformed",
			value:   "not-a-uuid",
			tag:     "uuid",
			wantErr: true,
		},
		{
			name:    "RequiredEmpty",
			value:   "",
			tag:     "required",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(tt.value, tt.tag)

			if tt.wantErr && len(errs) == 0 {
				t.Error("Validate() expected errors but got none")
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("Validate() got unexpected errors: %v", errs)
			}
		})
	}
}

func TestNew(t *testing.T) {
	v := New()
	if v == nil || v.cli == nil {
		t.Error("New() returned invalid validator")
	}
}
