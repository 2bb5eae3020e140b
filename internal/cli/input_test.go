package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("prompt: %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("want EOF, got %v", err)
	}
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "a\nb"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	if _, err := GetPassword("Enter password", &out); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetPassword_OK(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	var out bytes.Buffer
	pw, err := GetPassword("Enter password", &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))
	assert.Equal(t, "Enter password: \n", out.String())
}

func TestGetFields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
		bad      []string
	}{
		{
			name:     "Unix newlines, stop on empty line",
			input:    "phone=+254700\nlocation=Nairobi\n\n",
			expected: map[string]string{"phone": "+254700", "location": "Nairobi"},
		},
		{
			name:     "Windows CRLF",
			input:    "phone=1\r\n\r\n",
			expected: map[string]string{"phone": "1"},
		},
		{
			name:     "EOF without trailing blank line",
			input:    "firstName = Jane ",
			expected: map[string]string{"firstName": "Jane"},
		},
		{
			name:     "Malformed lines are reported",
			input:    "oops\n=x\nphone=2\n\n",
			expected: map[string]string{"phone": "2"},
			bad:      []string{"oops", "=x"},
		},
		{
			name:     "Immediate blank line",
			input:    "\n",
			expected: map[string]string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, bad, err := GetFields(rdr(tc.input), "Fields", &out)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.bad, bad)
		})
	}
}

func TestGetYesNo(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false} {
		var out bytes.Buffer
		got, err := GetYesNo(rdr(input), "Remember me", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}
}
