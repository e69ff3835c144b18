// Package quarantine defines the on-disk layout of the manual-check
// directory: numbered pair_NNN subfolders, each holding the two files of a
// disputed pair plus a plain-text descriptor recording where they came
// from.
package quarantine

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DirPrefix is the common prefix of quarantine subfolders.
	DirPrefix = "pair_"
	// DescriptorName is the descriptor file inside each pair folder.
	DescriptorName = "info.txt"
)

// Descriptor captures everything needed to reverse a quarantine: the
// original absolute paths, the names the files are stored under inside
// the pair folder, and the decision context.
type Descriptor struct {
	Original1       string
	Original2       string
	File1           string
	File2           string
	Distance        int
	ManualThreshold int
	QuarantinedAt   time.Time
}

// Encode renders the descriptor as plain text, one key per line.
func (d *Descriptor) Encode() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "original_1: %s\n", d.Original1)
	fmt.Fprintf(&b, "original_2: %s\n", d.Original2)
	fmt.Fprintf(&b, "file_1: %s\n", d.File1)
	fmt.Fprintf(&b, "file_2: %s\n", d.File2)
	fmt.Fprintf(&b, "distance: %d\n", d.Distance)
	fmt.Fprintf(&b, "manual_threshold: %d\n", d.ManualThreshold)
	fmt.Fprintf(&b, "quarantined_at: %s\n", d.QuarantinedAt.UTC().Format(time.RFC3339))
	return []byte(b.String())
}

// Parse reads a descriptor back. Unknown keys are ignored so the format
// can grow; missing original paths are an error.
func Parse(data []byte) (*Descriptor, error) {
	d := &Descriptor{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "original_1":
			d.Original1 = value
		case "original_2":
			d.Original2 = value
		case "file_1":
			d.File1 = value
		case "file_2":
			d.File2 = value
		case "distance":
			if n, err := strconv.Atoi(value); err == nil {
				d.Distance = n
			}
		case "manual_threshold":
			if n, err := strconv.Atoi(value); err == nil {
				d.ManualThreshold = n
			}
		case "quarantined_at":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				d.QuarantinedAt = ts
			}
		}
	}
	if d.Original1 == "" || d.Original2 == "" {
		return nil, fmt.Errorf("descriptor missing original paths")
	}
	return d, nil
}

// DirName formats the subfolder name for pair number n.
func DirName(n int) string {
	return fmt.Sprintf("%s%03d", DirPrefix, n)
}

// NextNumber returns the next free pair number in dir, starting at 1 and
// never colliding with pre-existing subfolders from earlier runs. A
// missing dir yields 1.
func NextNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	highest := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, DirPrefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(name, DirPrefix)); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// List returns the pair subfolder names present in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), DirPrefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
