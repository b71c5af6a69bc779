package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"authorID", "authorid"},
		{"author_id", "authorid"},
		{"author-id", "authorid"},
		{"AUTHORID", "authorid"},
		{"publishedAt", "publishedat"},
		{"published-at", "publishedat"},
		{"XMLBody", "xmlbody"},
		{"", ""},
		{"a", "a"},
		{"ID", "id"},
		{"first_name-Part", "firstnamepart"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestTokenizeCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"authorID", []string{"author", "ID"}},
		{"firstName", []string{"first", "Name"}},
		{"XMLBody", []string{"XML", "Body"}},
		{"getHTTPResponse", []string{"get", "HTTP", "Response"}},
		{"created_at", []string{"created", "at"}},
		{"ALLCAPS", []string{"ALLCAPS"}},
		{"", nil},
		{"AbC", []string{"Ab", "C"}},
		{"parseURL", []string{"parse", "URL"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenizeCamelCase(tt.input))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	assert.Equal(t, []string{"author", "id"}, TokenizeIdent("authorID"))
	assert.Equal(t, []string{"published", "at"}, TokenizeIdent("published-at"))
}
