package post

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{"2023-03-17", "2023-03-17", false},
		{" 2023-03-17 ", "2023-03-17", false},
		{"2023-03-17T23:30:00Z", "2023-03-17", false},
		{"2023-03-17T08:00:00", "2023-03-17", false},
		{"2023-03-17T23:30:00-05:00", "2023-03-17", false},
		{"17/03/2023", "", true},
		{"2023-02-30", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.input)
		if tt.err {
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", tt.input, err)
			continue
		}
		if d.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.input, d, tt.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
		E Date `json:"e"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2023-03-17T12:00:00Z","e":""}`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !v.E.IsZero() {
		t.Errorf("empty string should decode to zero date, got %s", v.E)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if got := string(out); got != `{"d":"2023-03-17","e":""}` {
		t.Errorf("marshal = %s", got)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 2, 29, 23, 59, 0, 0, time.FixedZone("X", -3*3600))
	if got := Today(now).String(); got != "2024-03-01" {
		t.Errorf("Today = %s, want 2024-03-01 (UTC)", got)
	}
}
