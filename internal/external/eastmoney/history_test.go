package eastmoney

import (
	"testing"
)

func TestSecID(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"600519", "1.600519"},    // Shanghai main board
		{"688981", "1.688981"},    // STAR market
		{"sh600000", "1.600000"},  // explicit exchange prefix
		{"000001", "0.000001"},    // Shenzhen main board
		{"300750", "0.300750"},    // ChiNext
		{"sz000002", "0.000002"},
	}
	for _, tt := range tests {
		if got := secID(tt.symbol); got != tt.want {
			t.Errorf("secID(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestParseKlines(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{
			name: "valid payload",
			body: `{"data":{"code":"600519","name":"贵州茅台","klines":[
				"2024-01-02,1685.01",
				"2024-01-03,1690.55"
			]}}`,
			want: 2,
		},
		{
			name: "malformed lines are skipped",
			body: `{"data":{"code":"600519","name":"贵州茅台","klines":[
				"2024-01-02,1690.55",
				"not-a-date,1700.10",
				"2024-01-03,not-a-price",
				"2024-01-04"
			]}}`,
			want: 1,
		},
		{
			name:    "null data",
			body:    `{"data":null}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `<html>blocked</html>`,
			wantErr: true,
		},
		{
			name: "empty klines",
			body: `{"data":{"code":"600519","name":"贵州茅台","klines":[]}}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := parseKlines([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseKlines() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if s.Len() != tt.want {
				t.Errorf("parseKlines() got %d observations, want %d", s.Len(), tt.want)
			}
			for _, o := range s.Observations() {
				if o.Date.IsZero() {
					t.Error("parseKlines() Date is zero")
				}
				if o.Close <= 0 {
					t.Error("parseKlines() Close is not positive")
				}
			}
		})
	}
}

func TestParseKlinesValues(t *testing.T) {
	body := `{"data":{"code":"600519","name":"贵州茅台","klines":["2024-01-02,1685.01"]}}`
	s, err := parseKlines([]byte(body))
	if err != nil {
		t.Fatalf("parseKlines() error = %v", err)
	}
	first, ok := s.First()
	if !ok {
		t.Fatal("empty series")
	}
	if got := first.Date.Format("2006-01-02"); got != "2024-01-02" {
		t.Errorf("Date = %s, want 2024-01-02", got)
	}
	if first.Close != 1685.01 {
		t.Errorf("Close = %v, want 1685.01", first.Close)
	}
}
