package runtime

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/stream"
)

// ProgressTracker counts distinct files announced by module markers on
// the progress channel. Markers may be split across reads.
// Not safe for concurrent use; the progress reader owns it.
type ProgressTracker struct {
	workDir   string
	requested map[string]string
	observed  map[string]struct{}
	carry     []byte
}

// NewProgressTracker tracks completion of files. Relative paths are
// resolved against workDir.
func NewProgressTracker(files []string, workDir string) *ProgressTracker {
	t := &ProgressTracker{
		workDir:   workDir,
		requested: make(map[string]string, len(files)),
		observed:  make(map[string]struct{}, len(files)),
	}
	for _, f := range files {
		t.requested[t.key(f)] = f
	}
	return t
}

// key normalizes a path for comparison. Windows paths compare case-insensitively.
func (t *ProgressTracker) key(p string) string {
	p = stream.NormalizePath(p)
	if t.workDir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(t.workDir, p)
	}
	p = filepath.Clean(p)
	if filepath.Separator == '\\' {
		p = strings.ToLower(p)
	}
	return p
}

// Feed scans one read and returns how many files completed for the first time.
func (t *ProgressTracker) Feed(data []byte) int {
	t.carry = append(t.carry, data...)

	added := 0
	for {
		i := bytes.IndexByte(t.carry, '\n')
		if i < 0 {
			break
		}
		added += t.scanLine(t.carry[:i])
		t.carry = t.carry[i+1:]
	}
	if len(t.carry) == 0 {
		t.carry = nil
	}
	return added
}

// Close scans an unterminated final line.
func (t *ProgressTracker) Close() int {
	added := t.scanLine(t.carry)
	t.carry = nil
	return added
}

func (t *ProgressTracker) scanLine(line []byte) int {
	i := bytes.Index(line, []byte(stream.ModuleMarker))
	if i < 0 {
		return 0
	}
	path, _ := stream.ParseModuleHeader(string(line[i+len(stream.ModuleMarker):]))
	if path == "" {
		return 0
	}
	k := t.key(path)
	if _, seen := t.observed[k]; seen {
		return 0
	}
	t.observed[k] = struct{}{}
	return 1
}

// Requested returns the number of distinct requested files.
func (t *ProgressTracker) Requested() int {
	return len(t.requested)
}

// Observed returns the number of distinct files seen in markers.
func (t *ProgressTracker) Observed() int {
	return len(t.observed)
}

// AllRequestedObserved reports whether every requested file appeared in a marker.
func (t *ProgressTracker) AllRequestedObserved() bool {
	for k := range t.requested {
		if _, ok := t.observed[k]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the requested files never seen, sorted.
func (t *ProgressTracker) Missing() []string {
	var missing []string
	for k, orig := range t.requested {
		if _, ok := t.observed[k]; !ok {
			missing = append(missing, orig)
		}
	}
	sort.Strings(missing)
	return missing
}
