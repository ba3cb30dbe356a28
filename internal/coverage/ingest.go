// Package coverage turns Go coverage profiles into stored builds and serves
// the stored builds to the dashboard.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/cover"

	"github.com/leapstack-labs/coverdash/internal/state"
)

// Metric names, in the order they are shown.
const (
	MetricPackage   = "Package"
	MetricFile      = "File"
	MetricLine      = "Line"
	MetricStatement = "Statement"
)

// Metrics lists the metrics computed for every build.
var Metrics = []string{MetricPackage, MetricFile, MetricLine, MetricStatement}

// IngestOptions controls how profiles are turned into a build.
type IngestOptions struct {
	// SourceRoot is the module root the sources are read from. Sources are
	// not captured when it is empty.
	SourceRoot string
	// ModulePath is stripped from profile file names. It is read from the
	// go.mod in SourceRoot when empty.
	ModulePath string
	// Changed lists module relative paths of the files changed by the build.
	Changed []string
	// Modified maps module relative paths to the lines changed by the
	// build, see ParseUnifiedDiff. Its files count as changed.
	Modified    map[string][]int
	Number      int
	DisplayName string
	URL         string
	CreatedAt   time.Time
}

// Report is a parsed build ready to be stored.
type Report struct {
	Build   state.Build
	Metrics []state.MetricValue
	Files   []state.FileRecord
}

// Metric returns the value of the named metric.
func (r *Report) Metric(name string) (state.MetricValue, bool) {
	for _, m := range r.Metrics {
		if m.Metric == name {
			return m, true
		}
	}
	return state.MetricValue{}, false
}

// BuildWriter stores parsed builds.
type BuildWriter interface {
	SaveBuild(ctx context.Context, b *state.Build, metrics []state.MetricValue, files []state.FileRecord) error
}

// Ingest parses the profiles and stores them as a new build.
func Ingest(ctx context.Context, w BuildWriter, profiles []string, opts IngestOptions) (*Report, error) {
	report, err := Parse(profiles, opts)
	if err != nil {
		return nil, err
	}
	if err := w.SaveBuild(ctx, &report.Build, report.Metrics, report.Files); err != nil {
		return nil, fmt.Errorf("saving build: %w", err)
	}
	return report, nil
}

// Parse reads coverage profiles and aggregates them into a report. Blocks
// of a file that appears in several profiles are merged.
func Parse(profilePaths []string, opts IngestOptions) (*Report, error) {
	if len(profilePaths) == 0 {
		return nil, errors.New("no coverage profiles given")
	}

	modPath := opts.ModulePath
	if modPath == "" && opts.SourceRoot != "" {
		detected, err := DetectModulePath(opts.SourceRoot)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		modPath = detected
	}

	merged := make(map[string]*cover.Profile)
	for _, p := range profilePaths {
		profiles, err := cover.ParseProfiles(p)
		if err != nil {
			return nil, fmt.Errorf("parsing coverage profile %s: %w", p, err)
		}
		for _, profile := range profiles {
			if existing, ok := merged[profile.FileName]; ok {
				mergeBlocks(existing, profile)
				continue
			}
			merged[profile.FileName] = profile
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := make(map[string]struct{}, len(opts.Changed))
	for _, c := range opts.Changed {
		changed[path.Clean(filepath.ToSlash(c))] = struct{}{}
	}

	files := make([]state.FileRecord, 0, len(names))
	for _, name := range names {
		f := fileRecord(merged[name], modPath)
		if _, ok := changed[f.Path]; ok {
			f.Changed = true
		}
		if lines, ok := opts.Modified[f.Path]; ok {
			f.Changed = true
			f.ModifiedLines = lines
		}
		if opts.SourceRoot != "" {
			src, err := os.ReadFile(filepath.Join(opts.SourceRoot, filepath.FromSlash(f.Path))) //nolint:gosec // path is from coverage profile
			if err == nil {
				f.HasSource = true
				f.Source = string(src)
			}
		}
		files = append(files, f)
	}

	return &Report{
		Build: state.Build{
			Number:      opts.Number,
			DisplayName: opts.DisplayName,
			URL:         opts.URL,
			CreatedAt:   opts.CreatedAt,
		},
		Metrics: Summarize(files),
		Files:   files,
	}, nil
}

// DetectModulePath reads the module path from the go.mod in root.
func DetectModulePath(root string) (string, error) {
	goMod := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(goMod) //nolint:gosec // path is from the source root argument
	if err != nil {
		return "", fmt.Errorf("reading go.mod: %w", err)
	}
	modPath := modfile.ModulePath(data)
	if modPath == "" {
		return "", fmt.Errorf("module directive not found in %s", goMod)
	}
	return modPath, nil
}

// FileHash returns the stable identifier of a file path.
func FileHash(relPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(relPath)).String()
}

type blockKey struct {
	startLine, startCol, endLine, endCol int
}

func mergeBlocks(dst, src *cover.Profile) {
	index := make(map[blockKey]int, len(dst.Blocks))
	for i, b := range dst.Blocks {
		index[blockKey{b.StartLine, b.StartCol, b.EndLine, b.EndCol}] = i
	}
	for _, b := range src.Blocks {
		i, ok := index[blockKey{b.StartLine, b.StartCol, b.EndLine, b.EndCol}]
		if !ok {
			index[blockKey{b.StartLine, b.StartCol, b.EndLine, b.EndCol}] = len(dst.Blocks)
			dst.Blocks = append(dst.Blocks, b)
			continue
		}
		if dst.Mode == "set" {
			dst.Blocks[i].Count = max(dst.Blocks[i].Count, b.Count)
		} else {
			dst.Blocks[i].Count += b.Count
		}
	}
}

func fileRecord(p *cover.Profile, modPath string) state.FileRecord {
	rel := p.FileName
	if modPath != "" {
		rel = strings.TrimPrefix(rel, modPath+"/")
	}

	f := state.FileRecord{
		Hash:    FileHash(rel),
		Path:    rel,
		Package: path.Dir(p.FileName),
		Lines:   lineCoverage(p.Blocks),
	}
	for _, b := range p.Blocks {
		if b.Count > 0 {
			f.CoveredStatements += b.NumStmt
		} else {
			f.MissedStatements += b.NumStmt
		}
	}
	for _, lc := range f.Lines {
		if lc.Covered > 0 {
			f.CoveredLines++
		} else {
			f.MissedLines++
		}
	}
	return f
}

// lineCoverage counts the executed and missed blocks touching every line.
// Lines without statements are absent.
func lineCoverage(blocks []cover.ProfileBlock) map[int]state.LineCoverage {
	lines := make(map[int]state.LineCoverage)
	for _, b := range blocks {
		if b.NumStmt == 0 {
			continue
		}
		for line := b.StartLine; line <= b.EndLine; line++ {
			lc := lines[line]
			if b.Count > 0 {
				lc.Covered++
			} else {
				lc.Missed++
			}
			lines[line] = lc
		}
	}
	return lines
}

// Summarize computes the build metrics from its files. A package or file
// counts as covered when at least one of its statements ran.
func Summarize(files []state.FileRecord) []state.MetricValue {
	pkg := state.MetricValue{Metric: MetricPackage}
	file := state.MetricValue{Metric: MetricFile}
	line := state.MetricValue{Metric: MetricLine}
	stmt := state.MetricValue{Metric: MetricStatement}

	packages := make(map[string]bool)
	for _, f := range files {
		covered := f.CoveredStatements > 0
		packages[f.Package] = packages[f.Package] || covered
		if covered {
			file.Covered++
		} else {
			file.Missed++
		}
		line.Covered += f.CoveredLines
		line.Missed += f.MissedLines
		stmt.Covered += f.CoveredStatements
		stmt.Missed += f.MissedStatements
	}
	for _, covered := range packages {
		if covered {
			pkg.Covered++
		} else {
			pkg.Missed++
		}
	}
	return []state.MetricValue{pkg, file, line, stmt}
}
