// resxgen generates TypeScript declarations and JSON/YAML data files from
// .NET .resx resource files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/resxgen/config"
	"github.com/minios-linux/resxgen/convert"
	"github.com/minios-linux/resxgen/csproj"
	"github.com/minios-linux/resxgen/dict"
	"github.com/minios-linux/resxgen/i18n"
	"github.com/minios-linux/resxgen/langmeta"
	"github.com/minios-linux/resxgen/lockfile"
	"github.com/minios-linux/resxgen/render"
	"github.com/minios-linux/resxgen/resx"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// errFailed is returned by commands whose documents failed. The failures
// have already been logged.
var errFailed = errors.New("some documents failed to convert")

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

type globalOptions struct {
	root    string
	workers int
	force   bool
	strict  bool
	noLock  bool
	verbose bool
}

var global globalOptions

func addGlobalFlags(fs *pflag.FlagSet, g *globalOptions) {
	fs.StringVar(&g.root, "root", "", "Project root directory (default: auto-detect)")
	fs.IntVar(&g.workers, "workers", 0, "Documents converted in parallel (default: number of CPUs)")
	fs.BoolVar(&g.force, "force", false, "Rewrite outputs even when the lock file says they are current")
	fs.BoolVar(&g.strict, "strict", false, "Fail documents whose keys conflict")
	fs.BoolVar(&g.noLock, "no-lock", false, "Do not read or write "+lockfile.LockFileName)
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Log every document")
}

func addFolderFlags(fs *pflag.FlagSet, input, output *string) {
	fs.StringVarP(input, "input", "i", "", "Folder searched for .resx files, relative to the root")
	fs.StringVarP(output, "output", "o", "", "Folder receiving outputs, relative to the root (default: next to each source)")
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resxgen",
		Short: "Generate TypeScript declarations and data files from .resx resources",
		Long: `resxgen converts .NET .resx resource files for client-side code.

Keys are split on '_' into nested groups: Errors_Network_Timeout becomes
Errors.Network.Timeout.

Commands:
  types     Generate .d.ts declarations (one class per resource file)
  data      Generate JSON or YAML files with the resource values
  run       Run the targets configured in .resxgen.yaml
  status    Show discovered resource files and lock state`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	global = globalOptions{}
	addGlobalFlags(root.PersistentFlags(), &global)

	root.AddCommand(
		newTypesCmd(),
		newDataCmd(),
		newRunCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFailed) {
			logError("%v", err)
		}
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("resxgen version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
			fmt.Printf("  messages:  %s\n", i18n.Language())
		},
	}
}

// ---------------------------------------------------------------------------
// Session: root, settings, lock file and project shared by a command
// ---------------------------------------------------------------------------

type session struct {
	root    string
	file    *config.File
	lock    *lockfile.LockFile
	project *csproj.Project
	opts    globalOptions
}

func openSession(g globalOptions) (*session, error) {
	root, err := config.ResolveRoot(g.root)
	if err != nil {
		return nil, err
	}
	file, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	s := &session{root: root, file: file, opts: g}
	if s.opts.workers == 0 {
		s.opts.workers = file.Workers
	}
	s.opts.strict = s.opts.strict || file.Strict

	if !g.noLock {
		if s.lock, err = lockfile.Load(root); err != nil {
			return nil, err
		}
	}

	projectPath := file.ProjectPath(root)
	if projectPath == "" {
		if projectPath, err = csproj.Find(root); err != nil {
			return nil, err
		}
	}
	if projectPath != "" {
		if s.project, err = csproj.Open(projectPath); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *session) pipeline() *convert.Pipeline {
	cfg := convert.Config{
		Root:    s.root,
		Workers: s.opts.workers,
		Strict:  s.opts.strict,
		Force:   s.opts.force,
		Lock:    s.lock,
	}
	// A nil *csproj.Project must not become a non-nil Registrar.
	if s.project != nil {
		cfg.Registrar = s.project
	}
	return convert.New(cfg)
}

func (s *session) close() {
	if s.lock == nil {
		return
	}
	if err := s.lock.Save(); err != nil {
		logWarning(i18n.T("Could not save %s: %v"), lockfile.LockFileName, err)
	}
}

func (s *session) rel(path string) string {
	if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

// run executes one job and logs its report. It returns errFailed when any
// document failed.
func (s *session) run(ctx context.Context, label string, job convert.Job) error {
	logInfo(i18n.T("%s: converting %s -> %s"), label, folderLabel(job.InputFolder), outputLabel(job.OutputFolder))

	rep, err := s.pipeline().Run(ctx, job)
	if err != nil {
		return err
	}
	if len(rep.Results) == 0 {
		logWarning(i18n.T("%s: no .resx files found in %s"), label, folderLabel(job.InputFolder))
		return nil
	}
	s.report(label, rep)

	if ctx.Err() != nil {
		logWarning("%s", i18n.T("Interrupted"))
	}
	if len(rep.Failed()) > 0 {
		return errFailed
	}
	return nil
}

func (s *session) report(label string, rep *convert.Report) {
	for _, res := range rep.Results {
		src := s.rel(res.Source)
		switch res.Status {
		case convert.StatusFailed:
			logError("%v", res.Err)
			continue
		case convert.StatusWritten:
			if s.opts.verbose {
				logSuccess(i18n.N("%s -> %s (%d entry)", "%s -> %s (%d entries)", res.Entries), src, s.rel(res.Output), res.Entries)
			}
		case convert.StatusUnchanged:
			if s.opts.verbose {
				logInfo(i18n.T("%s: up to date"), src)
			}
		case convert.StatusSkippedEmpty:
			if s.opts.verbose {
				logInfo(i18n.T("%s: no string resources, skipped"), src)
			}
		}
		for _, c := range res.Conflicts {
			logWarning("%s: %s", src, c)
		}
		if res.Registered {
			logInfo(i18n.T("Added %s to %s"), s.rel(res.Output), filepath.Base(s.project.Path()))
		}
	}

	logSuccess("%s: %s", label, summaryLine(rep))
}

func summaryLine(rep *convert.Report) string {
	return fmt.Sprintf(i18n.T("%d written, %d unchanged, %d empty, %d failed"),
		rep.Count(convert.StatusWritten),
		rep.Count(convert.StatusUnchanged),
		rep.Count(convert.StatusSkippedEmpty),
		rep.Count(convert.StatusFailed))
}

func folderLabel(folder string) string {
	if folder = strings.Trim(folder, `/\`); folder == "" {
		return "."
	}
	return folder
}

func outputLabel(folder string) string {
	if strings.Trim(folder, `/\`) == "" {
		return i18n.T("next to sources")
	}
	return folderLabel(folder)
}

// ---------------------------------------------------------------------------
// types
// ---------------------------------------------------------------------------

func newTypesCmd() *cobra.Command {
	var (
		namespace     string
		input, output string
		noValues      bool
	)

	cmd := &cobra.Command{
		Use:   "types",
		Short: "Generate TypeScript declarations",
		Long: `Generate one .d.ts file per .resx file. Each file declares a module
named after --namespace holding a class named after the resource file, with
one string property per resource and nested groups for '_' separated keys.

Generated files are added to the project's .csproj as TypeScriptCompile
items when a project file is configured or found in the root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(global)
			if err != nil {
				return err
			}
			defer s.close()

			if namespace == "" {
				namespace = s.file.Namespace
			}
			if namespace == "" {
				return fmt.Errorf("a namespace is required (--namespace, %s or %s)", config.EnvNamespace, config.FileName)
			}
			job := convert.TypesJob(namespace, input, output)
			if noValues {
				job = job.WithoutValues()
			}
			return s.run(cmd.Context(), "types", job)
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Declared module name")
	addFolderFlags(cmd.Flags(), &input, &output)
	cmd.Flags().BoolVar(&noValues, "no-values", false, "Omit the value comment after each member")

	return cmd
}

// ---------------------------------------------------------------------------
// data
// ---------------------------------------------------------------------------

func newDataCmd() *cobra.Command {
	var (
		input, output string
		lang, format  string
		indent        bool
	)

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Generate JSON or YAML data files",
		Long: `Generate one data file per .resx file with the resource values as
nested objects. With --lang the tag is added to the file name
(Messages.fr.json).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			tag, err := normalizeLanguage(lang)
			if err != nil {
				return err
			}

			s, err := openSession(global)
			if err != nil {
				return err
			}
			defer s.close()

			return s.run(cmd.Context(), "data", convert.DataJob(f, indent, input, output, tag))
		},
	}

	addFolderFlags(cmd.Flags(), &input, &output)
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language tag added to output names")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatJSON), "Output format: json or yaml")
	cmd.Flags().BoolVar(&indent, "indent", false, "Pretty-print JSON output")

	return cmd
}

// normalizeLanguage validates and canonicalizes a --lang value. Unknown
// but well-formed tags are accepted with a warning.
func normalizeLanguage(lang string) (string, error) {
	if strings.TrimSpace(lang) == "" {
		return "", nil
	}
	if !langmeta.Valid(lang) {
		return "", fmt.Errorf("invalid language tag %q", lang)
	}
	tag := langmeta.Normalize(lang)
	if _, ok := langmeta.Lookup(tag); !ok {
		logWarning(i18n.T("Unknown language %q, using it as is"), tag)
	}
	return tag, nil
}

// ---------------------------------------------------------------------------
// run (configured targets)
// ---------------------------------------------------------------------------

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [target...]",
		Short: "Run the targets configured in " + config.FileName,
		Long: `Run every target from ` + config.FileName + `, or only the named ones, in
the order given. A failing target does not stop the next one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(global)
			if err != nil {
				return err
			}
			defer s.close()

			if !s.file.Found() {
				return fmt.Errorf("no %s found in %s", config.FileName, s.root)
			}
			targets, err := s.file.Select(args)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				logWarning(i18n.T("No targets configured in %s"), s.file.Path())
				return nil
			}

			failed := false
			for _, t := range targets {
				if cmd.Context().Err() != nil {
					break
				}
				job, err := targetJob(t)
				if err != nil {
					return err
				}
				if t.Type == config.TargetTypeData && t.Language != "" {
					logInfo(i18n.T("%s: language %s"), t.Name, langmeta.Describe(job.Language))
				}
				if err := s.run(cmd.Context(), t.Name, job); err != nil {
					if !errors.Is(err, errFailed) {
						logError("%s: %v", t.Name, err)
					}
					failed = true
				}
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}

	return cmd
}

// targetJob turns a validated config target into a conversion job.
func targetJob(t config.Target) (convert.Job, error) {
	switch t.Type {
	case config.TargetTypeTypes:
		job := convert.TypesJob(t.Namespace, t.Input, t.Output)
		if t.NoValues {
			job = job.WithoutValues()
		}
		return job, nil
	case config.TargetTypeData:
		f, err := render.ParseFormat(t.Format)
		if err != nil {
			return convert.Job{}, fmt.Errorf("target %q: %w", t.Name, err)
		}
		tag := ""
		if t.Language != "" {
			if !langmeta.Valid(t.Language) {
				return convert.Job{}, fmt.Errorf("target %q: invalid language tag %q", t.Name, t.Language)
			}
			tag = langmeta.Normalize(t.Language)
		}
		return convert.DataJob(f, t.Indent, t.Input, t.Output, tag), nil
	}
	return convert.Job{}, fmt.Errorf("target %q has unknown type %q", t.Name, t.Type)
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show resource files, targets and lock state",
		Long: `Show the resolved project root, settings, and every .resx file under
--input with its string count, nesting depth and key conflicts. For each
configured target, shows whether its outputs are tracked in the lock file.
Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(global)
			if err != nil {
				return err
			}
			return s.status(input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Folder searched for .resx files, relative to the root")

	return cmd
}

func (s *session) status(input string) error {
	fmt.Fprintf(os.Stderr, "\n%sProject%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", s.root)
	if s.file.Found() {
		fmt.Fprintf(os.Stderr, "  Settings:   %s\n", s.rel(s.file.Path()))
	} else {
		fmt.Fprintf(os.Stderr, "  Settings:   %s\n", i18n.T("none"))
	}
	if s.project != nil {
		fmt.Fprintf(os.Stderr, "  Project:    %s\n", s.rel(s.project.Path()))
		if items, err := s.project.Includes(); err == nil {
			fmt.Fprintf(os.Stderr, "  Typings:    %s\n", i18n.N("%d TypeScript file registered", "%d TypeScript files registered", len(items), len(items)))
		}
	}
	if s.file.Namespace != "" {
		fmt.Fprintf(os.Stderr, "  Namespace:  %s\n", s.file.Namespace)
	}
	if s.lock != nil {
		fmt.Fprintf(os.Stderr, "  Lock file:  %s\n", s.lock.Summary())
	}

	p := s.pipeline()
	files, err := p.Discover(convert.Job{InputFolder: input})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%sResource files%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	if len(files) == 0 {
		logInfo(i18n.T("No .resx files found in %s"), folderLabel(input))
	}
	for _, f := range files {
		fmt.Fprintf(os.Stderr, "  %s\n", s.describeDocument(f))
	}

	if len(s.file.Targets) == 0 {
		fmt.Fprintln(os.Stderr)
		return nil
	}

	fmt.Fprintf(os.Stderr, "\n%sTargets%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	for _, t := range s.file.Targets {
		job, err := targetJob(t)
		if err != nil {
			return err
		}
		sources, err := p.Discover(job)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %-16s %s%v%s\n", t.Name, colorRed, err, colorReset)
			continue
		}
		tracked, missing := s.lockState(job, sources)
		fmt.Fprintf(os.Stderr, "  %-16s %-6s %s -> %s  %s\n",
			t.Name, t.Type, folderLabel(t.Input), outputLabel(t.Output),
			fmt.Sprintf(i18n.T("%d sources, %d tracked, %d missing"), len(sources), tracked, missing))
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func (s *session) describeDocument(path string) string {
	doc, err := resx.ParseFile(path)
	if err != nil {
		return fmt.Sprintf("%-40s %s%v%s", s.rel(path), colorRed, err, colorReset)
	}
	d, conflicts := dict.Build(convert.Pairs(doc), dict.Options{})
	line := fmt.Sprintf("%-40s %s, depth %d", s.rel(path), i18n.N("%d string", "%d strings", doc.Len(), doc.Len()), d.Depth())
	if len(conflicts) > 0 {
		line += fmt.Sprintf(", %s%s%s", colorYellow, i18n.N("%d conflict", "%d conflicts", len(conflicts), len(conflicts)), colorReset)
	}
	return line
}

// lockState counts the outputs of job that are recorded in the lock file
// and those that do not exist on disk.
func (s *session) lockState(job convert.Job, sources []string) (tracked, missing int) {
	ext := job.Renderer.Extension()
	for _, src := range sources {
		out := convert.OutputPath(s.root, src, job.OutputFolder, job.Language, ext)
		if s.lock != nil && s.lock.Has(lockfile.Key(s.root, out)) {
			tracked++
		}
		if _, err := os.Stat(out); err != nil {
			missing++
		}
	}
	return tracked, missing
}
