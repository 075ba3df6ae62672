// Command generate-goldens regenerates the reveal transcripts under
// testdata/goldens used by golden_test.go.
//
// Each golden is a markdown file with YAML front matter describing the case
// and a text block holding textbox.Transcript of the full reveal. Review the
// diff before committing regenerated files: a changed golden means the reveal
// sequence changed.
package main

import (
	"bytes"
	"crypto/sha256"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ryanlewis/textbox"
	"gopkg.in/yaml.v3"
)

// GoldenMetadata represents the YAML front matter in golden files
// This should match the struct in golden_test.go
type GoldenMetadata struct {
	Sample         string `yaml:"sample"`
	Budget         int    `yaml:"budget"`
	Variant        string `yaml:"variant"`
	Snapshots      int    `yaml:"snapshots"`
	Generated      string `yaml:"generated"`
	Generator      string `yaml:"generator"`
	ChecksumSHA256 string `yaml:"checksum_sha256"`
}

type goldenCase struct {
	name    string
	sample  string
	budget  int
	variant string
}

var (
	outDir = flag.String("out", "testdata/goldens", "Output directory")
	strict = flag.Bool("strict", false, "Exit on any warning")
)

// goldenCases covers markers, the plain variant, multi-byte text and
// consecutive forced breaks.
var goldenCases = []goldenCase{
	{"markers_wrap_shift", "aaab\ncccdd\ne|f", 3, "markers"},
	{"plain_wrap_shift", "aaab\ncccdd\ne", 3, "plain"},
	{"multibyte_wrap", "日本語テキスト", 3, "markers"},
	{"forced_breaks", "a||b\nc", 2, "markers"},
}

func main() {
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory %s: %v", *outDir, err)
	}

	for _, gc := range goldenCases {
		if err := generateGoldenFile(gc); err != nil {
			if *strict {
				log.Fatalf("Failed to generate golden file: %v", err)
			}
			log.Printf("Warning: %v", err)
		}
	}

	log.Println("Golden file generation complete")
}

// variantOptions maps a golden variant name to reveal options.
func variantOptions(variant string, budget int) ([]textbox.Option, error) {
	opts := []textbox.Option{textbox.WithBudget(budget)}
	switch variant {
	case "markers":
		return opts, nil
	case "plain":
		return append(opts, textbox.WithoutMarkers()), nil
	default:
		return nil, fmt.Errorf("unknown variant %q", variant)
	}
}

func generateGoldenFile(gc goldenCase) error {
	outFile := filepath.Join(*outDir, gc.name+".md")
	log.Printf("Generating %s", outFile)

	opts, err := variantOptions(gc.variant, gc.budget)
	if err != nil {
		return err
	}
	frames, err := textbox.Reveal(gc.sample, opts...)
	if err != nil {
		return fmt.Errorf("failed to reveal %s: %w", gc.name, err)
	}
	transcript := textbox.Transcript(frames)

	metadata := GoldenMetadata{
		Sample:         gc.sample, // YAML marshaling will handle escaping
		Budget:         gc.budget,
		Variant:        gc.variant,
		Snapshots:      len(frames),
		Generated:      time.Now().UTC().Format("2006-01-02"),
		Generator:      "generate-goldens",
		ChecksumSHA256: calculateChecksum(transcript),
	}

	yamlData, err := yaml.Marshal(&metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlData)
	buf.WriteString("---\n\n")
	buf.WriteString("```text\n")
	buf.WriteString(transcript)
	buf.WriteString("\n```\n")

	if err := os.WriteFile(outFile, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", outFile, err)
	}

	return nil
}

func calculateChecksum(data string) string {
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
