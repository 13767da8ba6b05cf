// Package matrixio reads and writes frame matrices as text: one frame per
// line, values separated by spaces.
package matrixio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrRagged reports rows of different lengths.
var ErrRagged = errors.New("matrixio: rows differ in length")

// Read parses a matrix. Blank lines are skipped.
func Read(r io.Reader) ([][]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var rows [][]float64
	for lineNo := 1; sc.Scan(); lineNo++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(rows) > 0 && len(fields) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrRagged, lineNo, len(fields), len(rows[0]))
		}

		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("matrixio: line %d value %d: %w", lineNo, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Write writes rows with shortest round-trip formatting.
func Write(w io.Writer, rows [][]float64) error {
	bw := bufio.NewWriter(w)
	var line []byte
	for _, row := range rows {
		line = line[:0]
		for i, v := range row {
			if i > 0 {
				line = append(line, ' ')
			}
			line = strconv.AppendFloat(line, v, 'g', -1, 64)
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFile reads a matrix from path.
func ReadFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// WriteFile writes rows to path, creating parent directories.
func WriteFile(path string, rows [][]float64) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, rows)
}
