// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package validation provides struct validation using go-playground/validator v10.
//
// Field names in errors come from koanf struct tags, so a failure reads
// "detector.p_threshold must be less than or equal to 1" rather than
// using the Go field path.
//
// Example usage:
//
//	type Section struct {
//	    Size int    `koanf:"size" validate:"min=1"`
//	    Mode string `koanf:"mode" validate:"oneof=fast slow"`
//	}
//
//	if err := validation.ValidateStruct(&section); err != nil {
//	    for _, fe := range err.Errors() {
//	        fmt.Println(fe.Field(), fe.Tag())
//	    }
//	}
package validation
