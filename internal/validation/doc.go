// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator and translates field errors
// into the API's VALIDATION_ERROR format. Error field names follow the
// `form` tag, then the `json` tag, so a multipart field named "N" is
// reported as "N" rather than the Go field name.
//
// # Quick Start
//
//	type SubmitForm struct {
//	    N        int    `form:"N" validate:"gt=0"`
//	    BaseFile []byte `form:"base_file" validate:"required,min=1"`
//	}
//
//	if err := validation.ValidateStruct(&form); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// Checks that depend on runtime configuration (for example a configured
// maximum N) use NewRequestValidationError so callers see one error shape.
package validation
