// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

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

type section struct {
	Size    int      `koanf:"size" validate:"min=1"`
	Mode    string   `koanf:"mode" validate:"oneof=fast slow"`
	Names   []string `koanf:"names" validate:"min=1,dive,oneof=a b"`
	Ratio   float64  `koanf:"ratio" validate:"gte=0,lte=1"`
	Addr    string   `koanf:"addr" validate:"omitempty,hostname_port"`
	Untaged int      `validate:"min=0"`
}

type root struct {
	Section section `koanf:"section"`
}

func validRoot() root {
	return root{Section: section{Size: 1, Mode: "fast", Names: []string{"a"}, Ratio: 0.5}}
}

func TestValidateStruct_Valid(t *testing.T) {
	r := validRoot()
	r.Section.Addr = "127.0.0.1:9464"
	if err := ValidateStruct(&r); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*root)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "min int",
			mutate:    func(r *root) { r.Section.Size = 0 },
			wantField: "section.size",
			wantTag:   "min",
			wantMsg:   "section.size must be at least 1",
		},
		{
			name:      "oneof",
			mutate:    func(r *root) { r.Section.Mode = "medium" },
			wantField: "section.mode",
			wantTag:   "oneof",
			wantMsg:   "section.mode must be one of: fast slow",
		},
		{
			name:      "empty slice",
			mutate:    func(r *root) { r.Section.Names = nil },
			wantField: "section.names",
			wantTag:   "min",
			wantMsg:   "section.names must be at least 1 items",
		},
		{
			name:      "slice element",
			mutate:    func(r *root) { r.Section.Names = []string{"a", "z"} },
			wantField: "section.names[1]",
			wantTag:   "oneof",
		},
		{
			name:      "lte",
			mutate:    func(r *root) { r.Section.Ratio = 1.5 },
			wantField: "section.ratio",
			wantTag:   "lte",
			wantMsg:   "section.ratio must be less than or equal to 1",
		},
		{
			name:      "hostname port",
			mutate:    func(r *root) { r.Section.Addr = "no-port" },
			wantField: "section.addr",
			wantTag:   "hostname_port",
		},
		{
			name:      "field without koanf tag",
			mutate:    func(r *root) { r.Section.Untaged = -1 },
			wantField: "section.Untaged",
			wantTag:   "min",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRoot()
			tt.mutate(&r)

			err := ValidateStruct(&r)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(Errors()) = %d, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if tt.wantMsg != "" && errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestErrors_JoinsMessages(t *testing.T) {
	r := validRoot()
	r.Section.Size = 0
	r.Section.Mode = ""

	err := ValidateStruct(&r)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "section.size") || !strings.Contains(msg, "section.mode") || !strings.Contains(msg, "; ") {
		t.Errorf("Error() = %q, want both fields joined", msg)
	}
}

func TestErrors_Empty(t *testing.T) {
	if got := (&Errors{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q, want %q", got, "validation failed")
	}
}
