package track

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Track is the formant track of one utterance.
type Track struct {
	ID         string
	StrideMs   float64
	Resonances int
	// Frames holds 3*Resonances ordered parameters per frame.
	Frames [][]float64
}

// TimeMs returns the timestamp of frame i.
func (t *Track) TimeMs(i int) float64 { return float64(i) * t.StrideMs }

// WriteTo writes the track in text form. It implements io.WriterTo.
func (t *Track) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var (
		n    int64
		line []byte
	)

	for i, frame := range t.Frames {
		line = line[:0]
		line = append(line, t.ID...)
		line = append(line, ' ')
		line = strconv.AppendFloat(line, t.TimeMs(i), 'f', 1, 64)
		line = append(line, ' ')
		line = strconv.AppendInt(line, int64(t.Resonances), 10)
		line = append(line, ' ')
		for _, v := range frame {
			line = strconv.AppendFloat(line, v, 'f', 2, 64)
			line = append(line, ' ')
		}
		line = append(line, '\n')

		k, err := bw.Write(line)
		n += int64(k)
		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}

// ReadTrack parses a track written by WriteTo. Values come back rounded to
// the precision of the text format; StrideMs is taken from the second frame.
func ReadTrack(r io.Reader) (*Track, error) {
	sc := bufio.NewScanner(r)
	tr := &Track{}

	for lineNo := 1; sc.Scan(); lineNo++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformed, lineNo, len(fields))
		}

		timeMs, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d time: %v", ErrMalformed, lineNo, err)
		}
		nsum, err := strconv.Atoi(fields[2])
		if err != nil || nsum <= 0 {
			return nil, fmt.Errorf("%w: line %d resonance count %q", ErrMalformed, lineNo, fields[2])
		}
		if len(fields) != 3+3*nsum {
			return nil, fmt.Errorf("%w: line %d has %d parameters, want %d", ErrMalformed, lineNo, len(fields)-3, 3*nsum)
		}

		if len(tr.Frames) == 0 {
			tr.ID = fields[0]
			tr.Resonances = nsum
		} else if fields[0] != tr.ID || nsum != tr.Resonances {
			return nil, fmt.Errorf("%w: line %d changes id or resonance count", ErrMalformed, lineNo)
		}
		if len(tr.Frames) == 1 {
			tr.StrideMs = timeMs
		}

		frame := make([]float64, 3*nsum)
		for i, f := range fields[3:] {
			frame[i], err = strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d parameter %d: %v", ErrMalformed, lineNo, i+1, err)
			}
		}
		tr.Frames = append(tr.Frames, frame)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(tr.Frames) == 0 {
		return nil, ErrEmptyTrack
	}

	return tr, nil
}
