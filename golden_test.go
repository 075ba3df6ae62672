package textbox

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// goldenMetadata represents the YAML front matter in golden files
type goldenMetadata struct {
	Sample         string `yaml:"sample"`
	Budget         int    `yaml:"budget"`
	Variant        string `yaml:"variant"`
	Snapshots      int    `yaml:"snapshots"`
	Generated      string `yaml:"generated"`
	Generator      string `yaml:"generator"`
	ChecksumSHA256 string `yaml:"checksum_sha256"`
}

// parseGoldenFile parses a markdown golden file and extracts metadata and the transcript
func parseGoldenFile(path string) (*goldenMetadata, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open golden file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	// Collect YAML front matter
	inFrontMatter := false
	var frontMatter strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			if !inFrontMatter {
				inFrontMatter = true
				continue
			}
			break
		}
		if inFrontMatter {
			frontMatter.WriteString(line)
			frontMatter.WriteByte('\n')
		}
	}

	metadata := &goldenMetadata{}
	if err := yaml.Unmarshal([]byte(frontMatter.String()), metadata); err != nil {
		return nil, "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	// Find and extract the transcript from the code block
	var lines []string
	inCodeBlock := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "```text") {
			inCodeBlock = true
			continue
		}
		if strings.HasPrefix(line, "```") && inCodeBlock {
			break
		}
		if inCodeBlock {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("error reading golden file: %w", err)
	}

	return metadata, strings.Join(lines, "\n"), nil
}

// goldenOptions maps the variant string from a golden file to reveal options
func goldenOptions(meta *goldenMetadata) ([]Option, error) {
	opts := []Option{WithBudget(meta.Budget)}
	switch meta.Variant {
	case "markers":
		return opts, nil
	case "plain":
		return append(opts, WithoutMarkers()), nil
	default:
		return nil, fmt.Errorf("unknown variant %q", meta.Variant)
	}
}

func TestGoldenFiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "goldens", "*.md"))
	if err != nil {
		t.Fatalf("failed to list golden files: %v", err)
	}
	if len(paths) == 0 {
		t.Skip("no golden files found; run go run ./cmd/generate-goldens")
	}

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".md")
		t.Run(name, func(t *testing.T) {
			meta, want, err := parseGoldenFile(path)
			if err != nil {
				t.Fatalf("parseGoldenFile() error = %v", err)
			}

			// Verify the golden itself has not been edited by hand
			sum := fmt.Sprintf("%x", sha256.Sum256([]byte(want)))
			if sum != meta.ChecksumSHA256 {
				t.Fatalf("checksum mismatch: file says %s, content hashes to %s", meta.ChecksumSHA256, sum)
			}

			opts, err := goldenOptions(meta)
			if err != nil {
				t.Fatal(err)
			}
			frames, err := Reveal(meta.Sample, opts...)
			if err != nil {
				t.Fatalf("Reveal() error = %v", err)
			}
			if len(frames) != meta.Snapshots {
				t.Errorf("got %d snapshots, golden has %d", len(frames), meta.Snapshots)
			}
			if got := Transcript(frames); got != want {
				t.Errorf("transcript mismatch for %q\n--- got ---\n%s\n--- want ---\n%s", meta.Sample, got, want)
			}
		})
	}
}
