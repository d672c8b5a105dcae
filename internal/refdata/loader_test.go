package refdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/salesreport/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSalespeople(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "salespeople.csv",
		"CC;111;Ana;Lopez\n"+
			"CC;222;Luis\n"+ // short, skipped
			"\n"+
			"NIT;333;Maria;Diaz\n"+
			"CC;111;Ana Maria;Lopez\n") // duplicate key, last wins

	lookup, err := NewLoader(';', nil).LoadSalespeople(path)
	if err != nil {
		t.Fatalf("LoadSalespeople: %v", err)
	}

	if len(lookup) != 2 {
		t.Fatalf("len = %d, want 2", len(lookup))
	}
	if name, ok := lookup.Resolve("CC", "111"); !ok || name != "Ana Maria Lopez" {
		t.Errorf("Resolve(CC,111) = %q, %v", name, ok)
	}
	if name, ok := lookup.Resolve("NIT", "333"); !ok || name != "Maria Diaz" {
		t.Errorf("Resolve(NIT,333) = %q, %v", name, ok)
	}
	if _, ok := lookup.Resolve("CC", "222"); ok {
		t.Error("short line should not be loaded")
	}
}

func TestLoadProducts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "products.csv",
		"5;Yoga Mat;2000\n"+
			"6;Dumbbell\n"+ // short, skipped
			"7;Kettlebell;3500\r\n"+
			"5;Yoga Mat Pro;2500\n") // duplicate id, last wins

	lookup, err := NewLoader(';', nil).LoadProducts(path)
	if err != nil {
		t.Fatalf("LoadProducts: %v", err)
	}

	if lookup.Len() != 2 {
		t.Fatalf("Len = %d, want 2", lookup.Len())
	}
	if price, ok := lookup.Price(5); !ok || price != 2500 {
		t.Errorf("Price(5) = %d, %v", price, ok)
	}
	if lookup.Name(5) != "Yoga Mat Pro" {
		t.Errorf("Name(5) = %q", lookup.Name(5))
	}
	if price, ok := lookup.Price(7); !ok || price != 3500 {
		t.Errorf("Price(7) = %d, %v", price, ok)
	}
	if _, ok := lookup.Price(6); ok {
		t.Error("short line should not be loaded")
	}
	if lookup.Name(6) != "6" {
		t.Errorf("Name(6) = %q, want fallback \"6\"", lookup.Name(6))
	}
}

func TestLoadProductsMalformedIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad id", "x;Yoga Mat;2000\n"},
		{"bad price", "5;Yoga Mat;20.00\n"},
		{"negative price", "5;Yoga Mat;-1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "products.csv", tt.content)
			_, err := NewLoader(';', nil).LoadProducts(path)
			if !errors.Is(err, types.ErrMalformedReference) {
				t.Fatalf("error = %v, want ErrMalformedReference", err)
			}
		})
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	products := writeFile(t, dir, "products.csv", "5;Yoga Mat;2000\n")
	salespeople := writeFile(t, dir, "salespeople.csv", "CC;111;Ana;Lopez\n")
	missing := filepath.Join(dir, "missing.csv")

	loader := NewLoader(';', nil)

	if _, err := loader.Load(missing, products); !errors.Is(err, types.ErrReferenceFileMissing) {
		t.Errorf("missing salespeople: error = %v", err)
	}
	if _, err := loader.Load(salespeople, missing); !errors.Is(err, types.ErrReferenceFileMissing) {
		t.Errorf("missing products: error = %v", err)
	}

	data, err := loader.Load(salespeople, products)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Salespeople) != 1 || data.Products.Len() != 1 {
		t.Fatalf("unexpected sizes: %d salespeople, %d products", len(data.Salespeople), data.Products.Len())
	}
}
