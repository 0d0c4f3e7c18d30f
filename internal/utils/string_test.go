package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAny(t *testing.T) {
	tests := []struct {
		s        string
		subs     []string
		expected bool
	}{
		{"hello world", []string{"hello"}, true},
		{"Hello World", []string{"hello"}, true},
		{"test string", []string{"foo", "bar"}, false},
		{"secret service error", []string{"secret service"}, true},
		{"", []string{"anything"}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ContainsAny(tt.s, tt.subs...), "%q %v", tt.s, tt.subs)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"sk-abcdef123456", "sk-a****3456"},
		{"密钥密钥密钥密钥密钥", "密钥密钥****密钥密钥"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Mask(tt.in), tt.in)
	}
}
