package utils

import "testing"

func TestSlugifyLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Bouwvergunningen", "Bouwvergunningen"},
		{"Index van de consumptieprijzen", "Index_van_de_consumptieprijzen"},
		{"  Werkloosheid  ", "Werkloosheid"},
		{"Bevolking: België", "Bevolking_Belgie"},
		{"Omzet/verkoop", "Omzet_verkoop"},
		{"Prijzen  -  woningen", "Prijzen_-_woningen"},
		{"Eind.", "Eind"},
		{"???", "statistic"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SlugifyLabel(tt.input); got != tt.want {
				t.Errorf("SlugifyLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyLabelKeepsCase(t *testing.T) {
	if SlugifyLabel("Werkloosheid") == SlugifyLabel("werkloosheid") {
		t.Fatalf("expected slugs of differently cased labels to differ")
	}
}
