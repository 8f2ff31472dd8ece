package clienv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGinMode(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"production", "release"},
		{"PROD", "release"},
		{"release", "release"},
		{"test", "test"},
		{"testing", "test"},
		{"development", "debug"},
		{"", "debug"},
		{"staging", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, GinMode(tt.env))
		})
	}
}
