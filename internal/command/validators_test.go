// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{"output text", OutputValidator, "text", false},
		{"output yaml", OutputValidator, "yaml", false},
		{"output csv", OutputValidator, "csv", true},
		{"backend rest", BackendValidator, "rest", false},
		{"backend mixed case", BackendValidator, "SQLite", false},
		{"backend ftp", BackendValidator, "ftp", true},
		{"duration positive", PositiveDurationValidator, time.Second, false},
		{"duration zero", PositiveDurationValidator, time.Duration(0), true},
		{"duration negative", PositiveDurationValidator, -time.Minute, true},
		{"jammed", JammedFlagValidator, "--output", true},
		{"not jammed", JammedFlagValidator, "-1 day", false},
		{"non empty", NonEmptyValidator, "a1", false},
		{"blank", NonEmptyValidator, "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlagValidatorsStopsAtFirstError(t *testing.T) {
	calls := 0
	count := func(any) error { calls++; return nil }

	err := FlagValidators("--x", count, JammedFlagValidator, count)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
