package track

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Target pairs an input file with its utterance id and output path.
type Target struct {
	ID     string
	Input  string
	Output string

	// Err is set when no output may be written for this input.
	Err error
}

// OutputPaths derives ids and output paths for a batch of inputs.
//
// With an output directory, the id is the input path relative to the
// longest directory prefix shared by the whole batch, without its
// extension, with path separators replaced by underscores. The output is
// <outDir>/<id><ext>. Without an output directory the output sits beside
// the input with ext substituted for the original extension.
//
// A target whose output is an input of the batch, or the output of an
// earlier target, carries ErrPathCollision in Err. The other targets are
// unaffected.
func OutputPaths(inputs []string, outDir, ext string) []Target {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	prefix := commonDir(inputs)
	targets := make([]Target, len(inputs))

	sources := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		sources[filepath.Clean(in)] = struct{}{}
	}
	seen := make(map[string]string, len(inputs))

	for i, in := range inputs {
		clean := filepath.Clean(in)
		stem := strings.TrimSuffix(clean, filepath.Ext(clean))

		var t Target
		if outDir == "" {
			t = Target{ID: filepath.Base(stem), Input: in, Output: stem + ext}
		} else {
			rel := strings.TrimPrefix(stem, prefix)
			rel = strings.TrimLeft(rel, string(filepath.Separator))
			id := strings.ReplaceAll(rel, string(filepath.Separator), "_")
			t = Target{ID: id, Input: in, Output: filepath.Join(outDir, id+ext)}
		}

		out := filepath.Clean(t.Output)
		if _, ok := sources[out]; ok {
			t.Err = fmt.Errorf("%w: output %s would overwrite an input", ErrPathCollision, t.Output)
		} else if prev, ok := seen[out]; ok {
			t.Err = fmt.Errorf("%w: %s and %s both map to %s", ErrPathCollision, prev, in, t.Output)
		} else {
			seen[out] = in
		}
		targets[i] = t
	}

	return targets
}

// commonDir returns the longest run of leading directory components shared
// by all paths. The file name itself never counts.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	split := func(p string) []string {
		dir := filepath.Dir(filepath.Clean(p))
		if dir == "." {
			return nil
		}
		return strings.SplitAfter(dir, string(filepath.Separator))
	}

	common := split(paths[0])
	for _, p := range paths[1:] {
		parts := split(p)
		n := 0
		for n < len(common) && n < len(parts) && strings.TrimSuffix(common[n], string(filepath.Separator)) == strings.TrimSuffix(parts[n], string(filepath.Separator)) {
			n++
		}
		common = common[:n]
	}

	return strings.Join(common, "")
}

// WriteFile writes t to path, creating parent directories.
func WriteFile(path string, t *Track) (err error) {
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

	_, err = t.WriteTo(f)
	return err
}
