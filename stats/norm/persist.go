package norm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Save writes s as two lines, mean then stddev, in shortest round-trip
// decimal form.
func Save(w io.Writer, s Stats) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n",
		strconv.FormatFloat(s.Mean, 'g', -1, 64),
		strconv.FormatFloat(s.StdDev, 'g', -1, 64))
	return err
}

// Load reads a pair written by Save and validates it.
func Load(r io.Reader) (Stats, error) {
	sc := bufio.NewScanner(r)
	var vals []float64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if len(vals) == 2 {
			return Stats{}, fmt.Errorf("norm: unexpected third line %q", line)
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return Stats{}, fmt.Errorf("norm: parse line %d: %w", len(vals)+1, err)
		}
		vals = append(vals, v)
	}
	if err := sc.Err(); err != nil {
		return Stats{}, err
	}
	if len(vals) != 2 {
		return Stats{}, fmt.Errorf("norm: want 2 lines, got %d", len(vals))
	}

	s := Stats{Mean: vals[0], StdDev: vals[1]}
	if err := s.Validate(); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// SaveFile writes s to path.
func SaveFile(path string, s Stats) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Save(f, s)
}

// LoadFile reads stats from path.
func LoadFile(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	return Load(f)
}
