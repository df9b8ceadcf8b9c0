package oifits

import "testing"

func TestDate2MJDKnownDates(t *testing.T) {
	tests := []struct {
		y, m, d int
		mjd     int
	}{
		{2014, 11, 13, 56974},
		{1858, 11, 17, 0},
		{2000, 1, 1, 51544},
		{1901, 1, 1, 15385},
		{2099, 12, 31, 88068},
	}
	for _, tt := range tests {
		if got := Date2MJD(tt.y, tt.m, tt.d); got != tt.mjd {
			t.Errorf("Date2MJD(%d, %d, %d) = %d, want %d", tt.y, tt.m, tt.d, got, tt.mjd)
		}
	}
}

func TestMJD2DateLiteral(t *testing.T) {
	y, m, d := MJD2Date(56974)
	if y != 2014 || m != 11 || d != 13 {
		t.Errorf("MJD2Date(56974) = %d-%d-%d, want 2014-11-13", y, m, d)
	}
}

func TestDateRoundTrip(t *testing.T) {
	start := Date2MJD(1901, 1, 1)
	end := Date2MJD(2099, 12, 31)
	for mjd := start; mjd <= end; mjd++ {
		y, m, d := MJD2Date(mjd)
		if got := Date2MJD(y, m, d); got != mjd {
			t.Fatalf("round trip of MJD %d via %04d-%02d-%02d gave %d", mjd, y, m, d, got)
		}
	}
}

func TestParseAndFormatDate(t *testing.T) {
	mjd, err := ParseDate("2014-11-13T01:02:03")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if mjd != 56974 {
		t.Errorf("ParseDate = %d, want 56974", mjd)
	}
	if s := FormatDate(mjd); s != "2014-11-13" {
		t.Errorf("FormatDate = %q", s)
	}
	if _, err := ParseDate("13/11/2014"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
