// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type submitForm struct {
	BaseFile     []byte `form:"base_file" validate:"required,min=1"`
	Secondary    []byte `form:"secondary_file" validate:"required_if=UseSecondary true"`
	UseSecondary bool   `form:"use_secondary_file"`
	N            int    `form:"N" validate:"gt=0"`
	Weighting    string `json:"weighting" validate:"omitempty,oneof=linear probability"`
}

func TestValidateStruct(t *testing.T) {
	valid := func() submitForm {
		return submitForm{BaseFile: []byte("1 2\n"), N: 3}
	}

	tests := []struct {
		name      string
		mutate    func(*submitForm)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"valid", func(*submitForm) {}, "", "", ""},
		{"zero N", func(f *submitForm) { f.N = 0 }, "N", "gt", "N must be greater than 0"},
		{"negative N", func(f *submitForm) { f.N = -4 }, "N", "gt", "N must be greater than 0"},
		{"missing base file", func(f *submitForm) { f.BaseFile = nil }, "base_file", "required", "base_file is required"},
		{"empty base file", func(f *submitForm) { f.BaseFile = []byte{} }, "base_file", "min", "base_file must not be empty"},
		{"secondary flagged but absent", func(f *submitForm) { f.UseSecondary = true }, "secondary_file", "required_if", "secondary_file is required"},
		{"secondary absent and not flagged", func(f *submitForm) { f.Secondary = nil }, "", "", ""},
		{"unknown weighting", func(f *submitForm) { f.Weighting = "cosine" }, "weighting", "oneof", "weighting must be one of: linear probability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid()
			tt.mutate(&form)

			err := ValidateStruct(&form)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() error = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error field/tag = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestRequestValidationError_ToAPIError(t *testing.T) {
	t.Run("single error echoes scalar value", func(t *testing.T) {
		err := ValidateStruct(&submitForm{BaseFile: []byte("x"), N: 0})
		apiErr := err.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
		}
		if apiErr.Details["field"] != "N" || apiErr.Details["value"] != 0 {
			t.Errorf("Details = %v, want field N with value 0", apiErr.Details)
		}
	})

	t.Run("upload bodies are not echoed", func(t *testing.T) {
		err := ValidateStruct(&submitForm{BaseFile: []byte{}, N: 1})
		if _, ok := err.ToAPIError().Details["value"]; ok {
			t.Error("Details should not contain the upload body")
		}
	})

	t.Run("multiple errors are listed", func(t *testing.T) {
		err := ValidateStruct(&submitForm{})
		apiErr := err.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Fatalf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
		}
		if !strings.Contains(apiErr.Message, "base_file:") || !strings.Contains(apiErr.Message, "N:") {
			t.Errorf("Message = %q, want both fields named", apiErr.Message)
		}
	})

	t.Run("constructed error", func(t *testing.T) {
		err := NewRequestValidationError("N", "lte", "100", 500, "N must be less than or equal to 100")
		if err.Error() != "N must be less than or equal to 100" {
			t.Errorf("Error() = %q", err.Error())
		}
		if err.ToAPIError().Details["tag"] != "lte" {
			t.Errorf("Details = %v", err.ToAPIError().Details)
		}
	})
}
