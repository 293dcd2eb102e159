package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupCaseInsensitive(t *testing.T) {
	c := NewBuiltin()

	for _, name := range []string{"tomato", "Tomato", "TOMATO", " tamatar "} {
		p, known := c.Lookup(name)
		if !known {
			t.Errorf("Lookup(%q) not known, want tomato profile", name)
		}
		if p.Name != "tomato" {
			t.Errorf("Lookup(%q).Name = %q, want tomato", name, p.Name)
		}
	}
}

func TestLookupUnknownFallsBackToGeneric(t *testing.T) {
	c := NewBuiltin()

	p, known := c.Lookup("dragonfruit")
	if known {
		t.Error("unknown crop reported as known")
	}
	if p.Name != "generic" {
		t.Errorf("fallback profile = %q, want generic", p.Name)
	}
	if p.DegradationPerHour <= 0 || p.WeatherSensitivity <= 0 {
		t.Error("generic profile must carry usable parameters")
	}
}

func TestBuiltinProfilesAreSane(t *testing.T) {
	c := NewBuiltin()

	if c.Count() < 8 {
		t.Fatalf("built-in catalog has %d profiles, want at least 8", c.Count())
	}
	for _, name := range c.Names() {
		p, _ := c.Lookup(name)
		if p.TempMinC >= p.TempMaxC {
			t.Errorf("%s: temp band [%v,%v] inverted", name, p.TempMinC, p.TempMaxC)
		}
		if p.HumidityMinPct >= p.HumidityMaxPct {
			t.Errorf("%s: humidity band inverted", name)
		}
		if p.TempSpreadC <= 0 || p.HumiditySpread <= 0 {
			t.Errorf("%s: spreads must be positive", name)
		}
		if p.DegradationPerHour < 0 || p.ReferencePriceINR <= 0 {
			t.Errorf("%s: degradation/reference price out of range", name)
		}
	}
}

func TestLoadMergesFileProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := `profiles:
  - name: Dragonfruit
    temp_min_c: 7
    temp_max_c: 10
    temp_spread_c: 8
    humidity_min_pct: 85
    humidity_max_pct: 95
    humidity_spread: 15
    degradation_per_hour: 1.2
    price_sensitivity: 1.5
    weather_sensitivity: 1.2
    reference_price_inr: 250
  - name: tomato
    temp_min_c: 12
    temp_max_c: 22
    temp_spread_c: 8
    humidity_min_pct: 60
    humidity_max_pct: 80
    humidity_spread: 15
    degradation_per_hour: 2.5
    price_sensitivity: 1.2
    weather_sensitivity: 1.5
    reference_price_inr: 45
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// New profile added.
	p, known := c.Lookup("dragonfruit")
	if !known || p.ReferencePriceINR != 250 {
		t.Errorf("dragonfruit profile not merged: known=%v price=%v", known, p.ReferencePriceINR)
	}

	// Existing profile overridden.
	p, _ = c.Lookup("tomato")
	if p.TempMinC != 12 {
		t.Errorf("tomato override not applied: TempMinC=%v, want 12", p.TempMinC)
	}
}

func TestLoadEmptyPathUsesBuiltins(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if c.Count() != NewBuiltin().Count() {
		t.Error("empty path should return the built-in catalog")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/catalog.yaml"); err == nil {
		t.Error("expected error for missing catalog file")
	}
}
