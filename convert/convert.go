// Package convert runs the resource conversion pipeline: discover .resx
// documents, parse each one, fold it into a nested dictionary, render it and
// write the result. Both output kinds (TypeScript declarations and plain
// data) share one pipeline; a Job selects the renderer and the per-flow
// details.
//
// Documents are converted independently on a bounded worker pool. A failure
// in one document never stops the others; every document gets a Result.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/resxgen/dict"
	"github.com/minios-linux/resxgen/lockfile"
	"github.com/minios-linux/resxgen/render"
	"github.com/minios-linux/resxgen/resx"
)

// ErrDiscovery wraps failures to enumerate the input folder. No document is
// converted when discovery fails.
var ErrDiscovery = errors.New("discovering resource files")

// ErrConflict is the per-document error in strict mode when a key is used
// both as a value and as a parent of nested keys.
var ErrConflict = errors.New("conflicting resource keys")

// ErrOutputCollision is the per-document error when an earlier document in
// discovery order already maps to the same output file.
var ErrOutputCollision = errors.New("output file already produced by another document")

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Writer persists a rendered artifact.
type Writer interface {
	Write(path string, data []byte) error
}

// Registrar adds a generated declaration file to the consuming project.
type Registrar interface {
	Register(path string) (bool, error)
}

// FileWriter writes artifacts to the local filesystem, creating parent
// directories as needed. Files are written to a temporary name first and
// renamed, so a failed write never leaves a truncated output behind.
type FileWriter struct{}

func (FileWriter) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds settings shared by every job of an invocation.
type Config struct {
	// Root is the project root. Input and output folders are relative to it.
	Root string
	// Workers bounds concurrent document conversions (default: NumCPU).
	Workers int
	// Strict fails documents with conflicting keys instead of warning.
	Strict bool
	// Force rewrites outputs even when the lock file says they are current.
	Force bool
	// Lock enables incremental runs. Nil disables them.
	Lock *lockfile.LockFile
	// Writer persists outputs (default: FileWriter).
	Writer Writer
	// Registrar receives every written declaration file. Nil disables
	// registration.
	Registrar Registrar
}

// Flow selects what a job produces.
type Flow int

const (
	// FlowTypes produces TypeScript declaration stubs.
	FlowTypes Flow = iota
	// FlowData produces plain data files.
	FlowData
)

func (f Flow) String() string {
	if f == FlowTypes {
		return "types"
	}
	return "data"
}

// Job describes one conversion batch.
type Job struct {
	Flow     Flow
	Renderer render.Renderer
	// InputFolder is searched recursively; empty means the whole root.
	InputFolder string
	// OutputFolder receives all outputs flattened; empty writes each output
	// next to its source.
	OutputFolder string
	// Language is inserted before the output extension (Messages.fr.json).
	Language string
	// Escape is applied to every value before it enters the dictionary.
	Escape func(string) string
	// Register hands written files to Config.Registrar.
	Register bool
	// Params are extra rendering parameters folded into lock fingerprints.
	Params []string
}

// WithoutValues returns a copy of a types job whose declarations omit the
// value comment after each member. Other jobs are returned unchanged.
func (j Job) WithoutValues() Job {
	ts, ok := j.Renderer.(render.TypeScript)
	if !ok {
		return j
	}
	ts.OmitValues = true
	j.Renderer = ts
	j.Params = append(append([]string(nil), j.Params...), "no-values")
	return j
}

// TypesJob returns the job for TypeScript declaration output.
func TypesJob(namespace, inputFolder, outputFolder string) Job {
	return Job{
		Flow:         FlowTypes,
		Renderer:     render.TypeScript{Namespace: namespace},
		InputFolder:  inputFolder,
		OutputFolder: outputFolder,
		Escape:       dict.EscapeSingleQuotes,
		Register:     true,
		Params:       []string{namespace},
	}
}

// DataJob returns the job for plain data output.
func DataJob(format render.Format, indent bool, inputFolder, outputFolder, language string) Job {
	return Job{
		Flow:         FlowData,
		Renderer:     render.NewData(format, indent),
		InputFolder:  inputFolder,
		OutputFolder: outputFolder,
		Language:     language,
		Params:       []string{string(format), fmt.Sprint(indent)},
	}
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// ToTypeDeclarations converts every .resx document under inputFolder into a
// .d.ts file declaring one class per document inside namespace.
func ToTypeDeclarations(ctx context.Context, cfg Config, namespace, inputFolder, outputFolder string) (*Report, error) {
	return New(cfg).Run(ctx, TypesJob(namespace, inputFolder, outputFolder))
}

// ToData converts every .resx document under inputFolder into compact JSON,
// optionally tagging output names with languageTag.
func ToData(ctx context.Context, cfg Config, inputFolder, outputFolder, languageTag string) (*Report, error) {
	return New(cfg).Run(ctx, DataJob(render.FormatJSON, false, inputFolder, outputFolder, languageTag))
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

// Pipeline converts documents according to a Config.
type Pipeline struct {
	cfg Config
}

// New returns a pipeline with defaults applied to cfg.
func New(cfg Config) *Pipeline {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if abs, err := filepath.Abs(cfg.Root); err == nil {
		cfg.Root = abs
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Writer == nil {
		cfg.Writer = FileWriter{}
	}
	return &Pipeline{cfg: cfg}
}

// Root returns the absolute project root.
func (p *Pipeline) Root() string { return p.cfg.Root }

// Discover lists the documents a job would convert.
func (p *Pipeline) Discover(job Job) ([]string, error) {
	files, err := resx.Find(ResolveFolder(p.cfg.Root, job.InputFolder))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	return files, nil
}

// Run converts every discovered document. The returned error is non-nil
// only for discovery failures; per-document failures are in the Report.
// Cancelling ctx stops documents that have not started yet.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Report, error) {
	if job.Renderer == nil {
		return nil, fmt.Errorf("job has no renderer")
	}
	files, err := p.Discover(job)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(files))
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)

	owners := make(map[string]string, len(files))
	ext := job.Renderer.Extension()
	for i, src := range files {
		out := OutputPath(p.cfg.Root, src, job.OutputFolder, job.Language, ext)
		if first, ok := owners[out]; ok {
			results[i] = Result{
				Source: src,
				Output: out,
				Status: StatusFailed,
				Err:    fmt.Errorf("%s: %w: %s", src, ErrOutputCollision, first),
			}
			continue
		}
		owners[out] = src

		if err := ctx.Err(); err != nil {
			results[i] = Result{Source: src, Status: StatusFailed, Err: err}
			continue
		}
		i, src := i, src // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Source: src, Status: StatusFailed, Err: err}
				return nil
			}
			results[i] = p.Convert(job, src)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	return &Report{Flow: job.Flow, Results: results}, nil
}

// Convert runs the pipeline for a single document.
func (p *Pipeline) Convert(job Job, src string) Result {
	res := Result{Source: src}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fail(fmt.Errorf("reading %s: %w", src, err))
	}
	doc, err := resx.Parse(data)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", src, err))
	}
	res.Entries = doc.Len()

	d, conflicts := dict.Build(Pairs(doc), dict.Options{Escape: job.Escape})
	res.Conflicts = conflicts

	ext := job.Renderer.Extension()
	res.Output = OutputPath(p.cfg.Root, src, job.OutputFolder, job.Language, ext)
	key := lockfile.Key(p.cfg.Root, res.Output)

	if d.Len() == 0 {
		if p.cfg.Lock != nil {
			p.cfg.Lock.Remove(key)
		}
		res.Status = StatusSkippedEmpty
		return res
	}
	if p.cfg.Strict && len(conflicts) > 0 {
		return fail(fmt.Errorf("%s: %w: %s", src, ErrConflict, conflicts[0]))
	}

	fingerprint := lockfile.Fingerprint(append([]string{string(data), job.Flow.String(), ext, p.relative(src)}, job.Params...)...)
	if p.cfg.Lock != nil && !p.cfg.Force && !p.cfg.Lock.IsChanged(key, fingerprint) && fileExists(res.Output) {
		res.Status = StatusUnchanged
	} else {
		out, err := job.Renderer.Render(render.Source{Path: p.relative(src), Name: resx.BaseName(src)}, d)
		if err != nil {
			return fail(fmt.Errorf("rendering %s: %w", src, err))
		}
		if err := p.cfg.Writer.Write(res.Output, out); err != nil {
			return fail(err)
		}
		res.Status = StatusWritten
	}

	if job.Register && p.cfg.Registrar != nil {
		added, err := p.cfg.Registrar.Register(res.Output)
		if err != nil {
			return fail(fmt.Errorf("registering %s: %w", res.Output, err))
		}
		res.Registered = added
	}

	if p.cfg.Lock != nil && res.Status == StatusWritten {
		p.cfg.Lock.Update(key, fingerprint)
	}
	return res
}

func (p *Pipeline) relative(path string) string {
	if rel, err := filepath.Rel(p.cfg.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// Pairs returns the name/value records of doc in document order.
func Pairs(doc *resx.Document) []dict.Pair {
	out := make([]dict.Pair, 0, doc.Len())
	for _, e := range doc.Entries {
		out = append(out, dict.Pair{Name: e.Name, Value: e.Value})
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// ResolveFolder joins a project-relative folder onto root. Both '/' and '\'
// are accepted as separators and leading or trailing separators are
// ignored. An empty folder resolves to root itself.
func ResolveFolder(root, folder string) string {
	folder = strings.ReplaceAll(folder, `\`, "/")
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(folder))
}

// OutputPath computes where the output for src goes: next to src, or in
// outputFolder (relative to root, flattened) when one is given. The name is
// the source base name, the optional language tag and ext.
func OutputPath(root, src, outputFolder, language, ext string) string {
	name := resx.BaseName(src)
	if language != "" {
		name += "." + language
	}
	name += ext

	if strings.Trim(outputFolder, `/\`) == "" {
		return filepath.Join(filepath.Dir(src), name)
	}
	return filepath.Join(ResolveFolder(root, outputFolder), name)
}
