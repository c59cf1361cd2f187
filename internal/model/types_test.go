package model

import "testing"

func TestSeriesFromTicker(t *testing.T) {
	tests := []struct {
		ticker string
		want   string
	}{
		{"KXATPMATCH-26JAN03NAVTHO-THO", "KXATPMATCH"},
		{"kxwtamatch-26jan04xyz", "KXWTAMATCH"},
		{"KXUNITEDCUPMATCH", "KXUNITEDCUPMATCH"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SeriesFromTicker(tt.ticker); got != tt.want {
			t.Errorf("SeriesFromTicker(%q) = %q, want %q", tt.ticker, got, tt.want)
		}
	}
}

func TestEventFromTicker(t *testing.T) {
	tests := []struct {
		ticker string
		want   string
	}{
		{"KXATPMATCH-26JAN03NAVTHO-THO", "KXATPMATCH-26JAN03NAVTHO"},
		{"KXATPMATCH-26JAN03NAVTHO", "KXATPMATCH"},
		{"NODASH", "NODASH"},
		{"-LEADING", "-LEADING"},
	}

	for _, tt := range tests {
		if got := EventFromTicker(tt.ticker); got != tt.want {
			t.Errorf("EventFromTicker(%q) = %q, want %q", tt.ticker, got, tt.want)
		}
	}
}

func TestInstrument_PricePresence(t *testing.T) {
	in := Instrument{}
	if in.HasYesPrice() || in.HasNoPrice() {
		t.Error("empty instrument should have no prices")
	}

	in = Instrument{YesBid: 60, NoAsk: 40}
	if !in.HasYesPrice() {
		t.Error("yes price should be present via YesBid")
	}
	if !in.HasNoPrice() {
		t.Error("no price should be present via NoAsk")
	}

	in = Instrument{LastPrice: 55}
	if !in.HasYesPrice() {
		t.Error("yes price should be present via LastPrice")
	}
	if in.HasNoPrice() {
		t.Error("no price should be absent")
	}
}

func TestInstrument_Ask(t *testing.T) {
	in := Instrument{YesAsk: 64, NoAsk: 38}
	if got := in.Ask(SideYes); got != 64 {
		t.Errorf("Ask(yes) = %d, want 64", got)
	}
	if got := in.Ask(SideNo); got != 38 {
		t.Errorf("Ask(no) = %d, want 38", got)
	}
}
