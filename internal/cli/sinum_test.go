package cli

import "testing"

func TestParseSINum(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "42", want: 42},
		{in: "500k", want: 500_000},
		{in: "500K", want: 500_000},
		{in: "100M", want: 100_000_000},
		{in: "2G", want: 2_000_000_000},
		{in: "1m", wantErr: true},
		{in: "", wantErr: true},
		{in: "k", wantErr: true},
		{in: "12.5M", wantErr: true},
		{in: "-5k", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSINum(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSINum(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseSINum(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSINum(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{in: 0, want: "0"},
		{in: 42, want: "42"},
		{in: 500_000, want: "500k"},
		{in: 100_000_000, want: "100M"},
		{in: 2_000_000_000, want: "2G"},
		{in: 1_500, want: "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatSINum(tt.in); got != tt.want {
				t.Errorf("formatSINum(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSINumRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 7, 1_000, 250_000, 100_000_000, 3_000_000_000} {
		got, err := parseSINum(formatSINum(n))
		if err != nil {
			t.Fatalf("round trip %d: %v", n, err)
		}
		if got != n {
			t.Errorf("round trip %d = %d", n, got)
		}
	}
}
