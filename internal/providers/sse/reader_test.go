package sse

import (
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string) []string {
	t.Helper()
	r := NewReader(strings.NewReader(input))
	var lines []string
	for {
		line, err := r.Next()
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		lines = append(lines, line)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "data prefixed payloads",
			input: "data: {\"a\":1}\n\ndata: {\"b\":2}\n\n",
			want:  []string{`{"a":1}`, `{"b":2}`},
		},
		{
			name:  "data prefix without space",
			input: "data:{\"a\":1}\n",
			want:  []string{`{"a":1}`},
		},
		{
			name:  "crlf line endings",
			input: "data: one\r\ndata: two\r\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "comments and non-data fields skipped",
			input: ": keep-alive\nevent: message\nid: 3\nretry: 100\ndata: payload\n",
			want:  []string{"payload"},
		},
		{
			name:  "bare json envelopes pass through",
			input: "{\"candidates\":[]}\n{\"candidates\":[{}]}\n",
			want:  []string{`{"candidates":[]}`, `{"candidates":[{}]}`},
		},
		{
			name:  "final line without trailing newline",
			input: "data: first\ndata: last",
			want:  []string{"first", "last"},
		},
		{
			name:  "blank lines only",
			input: "\n\r\n\n",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
