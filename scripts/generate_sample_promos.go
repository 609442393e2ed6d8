//go:build ignore

// Writes sample promo code lists to data/promos for local runs:
//
//	go run scripts/generate_sample_promos.go
//
// With the default PROMO_MIN_MATCH_COUNT of 2 a code is accepted when it
// appears in at least two of the three lists.
package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	lists := map[string][]string{
		"promobase1.gz": {"KANDYFREE", "HERBAL2025", "WELCOME10", "ONLYFIRST1", "NEWYEAR25"},
		"promobase2.gz": {"KANDYFREE", "HERBAL2025", "WELCOME10", "ONLYSECOND", "AVURUDU25"},
		"promobase3.gz": {"AVURUDU25", "NEWYEAR25", "WELCOME10", "ONLYTHIRD3", "VESAK2025"},
	}

	seen := map[string]int{}
	for filename, codes := range lists {
		path := filepath.Join(dataDir, filename)
		if err := writeList(path, codes); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}
		for _, c := range codes {
			seen[c]++
		}
		fmt.Printf("Created %s with %d codes\n", path, len(codes))
	}

	var valid, invalid []string
	for code, n := range seen {
		if n >= 2 {
			valid = append(valid, code)
		} else {
			invalid = append(invalid, code)
		}
	}
	sort.Strings(valid)
	sort.Strings(invalid)

	fmt.Println("\nAccepted codes (in at least 2 lists):")
	for _, c := range valid {
		fmt.Printf("  - %s (%d lists)\n", c, seen[c])
	}
	fmt.Println("\nRejected codes (in 1 list):")
	for _, c := range invalid {
		fmt.Printf("  - %s\n", c)
	}
}

func writeList(path string, codes []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	for _, code := range codes {
		if _, err := fmt.Fprintln(gz, code); err != nil {
			gz.Close()
			return fmt.Errorf("failed to write code: %w", err)
		}
	}
	return gz.Close()
}
