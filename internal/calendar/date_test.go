package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime asserts that time() is canonical and gives comparable values.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)
	if d1.time() != d2.time() {
		t.Errorf("same day gives two different times")
	}
}

func TestNew_Normalizes(t *testing.T) {
	if got := New(2024, 2, 30); got != MustParse("2024-03-01") {
		t.Errorf("New(2024, 2, 30) = %v, want 2024-03-01", got)
	}
	if got := New(2024, 13, 1); got != MustParse("2025-01-01") {
		t.Errorf("New(2024, 13, 1) = %v, want 2025-01-01", got)
	}
}

func TestClamped(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
		want  string
	}{
		{2024, time.February, 29, "2024-02-29"},
		{2024, time.February, 30, "2024-02-29"},
		{2024, time.February, 31, "2024-02-29"},
		{2023, time.February, 29, "2023-02-28"},
		{2023, time.February, 31, "2023-02-28"},
		{2024, time.April, 31, "2024-04-30"},
		{2024, time.January, 31, "2024-01-31"},
		{2024, 14, 31, "2025-02-28"},
		{2024, time.March, 0, "2024-03-01"},
	}
	for _, tt := range tests {
		if got := Clamped(tt.year, tt.month, tt.day); got.String() != tt.want {
			t.Errorf("Clamped(%d, %d, %d) = %v, want %v", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from string
		n    int
		want string
	}{
		{"2024-01-10", 1, "2024-02-10"},
		{"2024-01-10", 5, "2024-06-10"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-01-31", 2, "2024-03-31"},
		{"2024-11-30", 3, "2025-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.from).AddMonths(tt.n); got.String() != tt.want {
			t.Errorf("%s.AddMonths(%d) = %v, want %v", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		to, from string
		want     int
	}{
		{"2024-03-10", "2024-01-10", 2},
		{"2024-03-09", "2024-01-10", 1},
		{"2024-01-10", "2024-01-10", 0},
		{"2024-02-29", "2024-01-31", 1},
		{"2024-02-28", "2024-01-31", 0},
		{"2025-01-10", "2024-01-10", 12},
		{"2024-01-10", "2024-03-10", -2},
	}
	for _, tt := range tests {
		if got := MonthsBetween(MustParse(tt.to), MustParse(tt.from)); got != tt.want {
			t.Errorf("MonthsBetween(%s, %s) = %d, want %d", tt.to, tt.from, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2025-7-1")
	if err != nil {
		t.Fatalf("Parse() unexpected error = %v", err)
	}
	if d.String() != "2025-07-01" {
		t.Errorf("Parse(2025-7-1) = %v", d)
	}
	if _, err := Parse("01/07/2025"); err == nil {
		t.Error("Parse(01/07/2025) expected an error")
	}
}

func TestJSON(t *testing.T) {
	type payload struct {
		On   Date `json:"on"`
		Zero Date `json:"zero"`
	}
	data, err := json.Marshal(payload{On: New(2024, 3, 5)})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"on":"2024-03-05","zero":null}` {
		t.Errorf("Marshal = %s", data)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"on":"2024-3-5","zero":""}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.On != New(2024, 3, 5) || !p.Zero.IsZero() {
		t.Errorf("Unmarshal = %+v", p)
	}
}

func TestScan(t *testing.T) {
	var d Date
	if err := d.Scan("2024-06-10"); err != nil {
		t.Fatal(err)
	}
	if d != New(2024, 6, 10) {
		t.Errorf("Scan(string) = %v", d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("Scan(nil) = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) expected an error")
	}
}
