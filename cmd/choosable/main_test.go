package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	errs "github.com/apocalyptech/choosable/pkg/errors"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		out  string
	}{
		{"success", nil, 0, ""},
		{"interrupted", fmt.Errorf("shell: %w", context.Canceled), 130, ""},
		{"book error", errs.New(errs.ErrCodeNotFound, "page 9 not found"), 1, "Error: page 9 not found\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := report(&buf, tt.err); got != tt.code {
				t.Errorf("report() = %d, want %d", got, tt.code)
			}
			if buf.String() != tt.out {
				t.Errorf("report() wrote %q, want %q", buf.String(), tt.out)
			}
		})
	}
}
