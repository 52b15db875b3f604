// Package stubgen generates Python stub files for a FreeCAD source tree.
//
// A Project walks the source root for XML declaration files (*Py.xml) and
// PyCXX sources (*.cpp with init_type blocks), generates one class stub per
// declared class and groups the classes into one __init__.pyi per Python
// module. A file that fails to generate is logged and reported; the rest of
// the tree is still generated.
package stubgen

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/registry"
)

const (
	// DefaultDirPermissions is used for created module directories.
	DefaultDirPermissions = 0o755
	// DefaultFilePermissions is used for written stub files.
	DefaultFilePermissions = 0o644
)

// Project is one generation run over a source tree.
type Project struct {
	// SourceDir is the FreeCAD src/ directory.
	SourceDir string
	// OutputDir receives one directory per Python module.
	OutputDir string
	// Exclude holds glob patterns matched against slash-separated paths
	// relative to SourceDir and against base names.
	Exclude []string
	// Registry defaults to registry.Default().
	Registry *registry.Registry
	// DebugNotes appends generator notes to every docstring.
	DebugNotes bool
	Log        *zap.SugaredLogger
}

// FileError records a source file that could not be generated.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Report summarises a run.
type Report struct {
	// Files counts the source files processed, Failed those that errored.
	Files   int
	Failed  int
	Classes int
	// Modules lists the generated module names, sorted.
	Modules  []string
	Errors   []FileError
	Revision string
	Duration time.Duration
}

func (p *Project) defaults() {
	if p.Registry == nil {
		p.Registry = registry.Default()
	}
	if p.Log == nil {
		p.Log = logger.ComponentLogger("stubgen")
	}
}

// Build generates every module in memory.
func (p *Project) Build(ctx context.Context) (map[string]*Module, *Report, error) {
	p.defaults()
	start := time.Now()

	sources, err := p.sources()
	if err != nil {
		return nil, nil, err
	}

	report := &Report{}
	report.Revision, err = SourceRevision(p.SourceDir)
	if err != nil {
		p.Log.Warnw("Cannot read source revision", logger.FieldError, err)
	}

	modules := make(map[string]*Module)
	for _, rel := range sources {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Wrap(err, "generation cancelled")
		}
		report.Files++

		stubs, err := p.generateFile(rel)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, FileError{Path: rel, Err: err})
			p.Log.Errorw("Failed to generate stubs",
				logger.FieldFile, rel,
				logger.FieldError, err,
			)
			continue
		}

		for _, stub := range stubs {
			mod, ok := modules[stub.desc.Module]
			if !ok {
				mod = NewModule(stub.desc.Module)
				mod.Revision = report.Revision
				modules[stub.desc.Module] = mod
			}
			if prev, added := mod.AddClass(stub.desc.Name, stub.render(), stub.source); !added {
				p.Log.Warnw("Duplicate class skipped",
					logger.FieldClass, stub.desc.Qualified(),
					logger.FieldFile, rel,
					"first", prev,
				)
				continue
			}
			mod.Require(stub.imports.Items()...)
			report.Classes++
		}
	}

	for name := range modules {
		report.Modules = append(report.Modules, name)
	}
	sort.Strings(report.Modules)
	report.Duration = time.Since(start)
	return modules, report, nil
}

// Generate builds every module and writes it below OutputDir.
func (p *Project) Generate(ctx context.Context) (*Report, error) {
	modules, report, err := p.Build(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range report.Modules {
		if err := p.write(modules[name]); err != nil {
			return report, err
		}
	}
	p.Log.Infow("Stubs generated",
		logger.FieldCount, report.Classes,
		logger.FieldFailed, report.Failed,
		"modules", len(report.Modules),
		logger.FieldDurationMS, report.Duration.Milliseconds(),
	)
	return report, nil
}

// Check builds every module and returns the stub paths below OutputDir that
// are missing or differ from the generated text. The source revision line is
// ignored.
func (p *Project) Check(ctx context.Context) ([]string, *Report, error) {
	modules, report, err := p.Build(ctx)
	if err != nil {
		return nil, nil, err
	}

	var stale []string
	for _, name := range report.Modules {
		mod := modules[name]
		path := filepath.Join(p.OutputDir, mod.Path())
		existing, err := readOptional(path)
		if err != nil {
			return nil, report, err
		}
		if withoutRevision(existing) != withoutRevision(mod.Render()) {
			stale = append(stale, path)
		}
	}
	return stale, report, nil
}

func (p *Project) write(mod *Module) error {
	path := filepath.Join(p.OutputDir, mod.Path())
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", mod.Name)
	}
	if err := os.WriteFile(path, []byte(mod.Render()), DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	p.Log.Debugw("Module written", logger.FieldModule, mod.Name, logger.FieldFile, path)
	return nil
}

// generateFile dispatches one source file to its generator.
func (p *Project) generateFile(rel string) ([]*classStub, error) {
	u := unit{
		path:       filepath.Join(p.SourceDir, rel),
		rel:        rel,
		sourceDir:  p.SourceDir,
		module:     ModuleFor(rel),
		registry:   p.Registry,
		debugNotes: p.DebugNotes,
		log:        logger.ChildLogger(p.Log, logger.FieldFile, rel),
	}
	if strings.HasSuffix(rel, ".xml") {
		return generateXML(u)
	}
	if u.module == "" {
		return nil, nil
	}
	return generateCpp(u)
}

// sources lists the generator inputs below SourceDir in lexical order.
func (p *Project) sources() ([]string, error) {
	info, err := os.Stat(p.SourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("source directory %s does not exist", p.SourceDir)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", p.SourceDir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("source %s is not a directory", p.SourceDir)
	}

	var out []string
	err = filepath.WalkDir(p.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(p.SourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || p.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if p.excluded(rel) || !isSource(d.Name()) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", p.SourceDir)
	}
	return out, nil
}

func (p *Project) excluded(rel string) bool {
	slashed := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, pattern := range p.Exclude {
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// isSource reports whether name is a generator input: a declaration file or
// a .cpp file that is not a declaration's implementation.
func isSource(name string) bool {
	switch {
	case strings.HasSuffix(name, "Py.xml"):
		return true
	case strings.HasSuffix(name, "PyImp.cpp"):
		return false
	default:
		return strings.HasSuffix(name, ".cpp")
	}
}

// ModuleFor derives the Python module of a source file from its location
// below the source root, or "" when the location maps to no module.
//
//	ModuleFor("Mod/Part/App/TopoShapePy.xml") == "Part"
//	ModuleFor("Mod/Part/Gui/ViewProviderPartExtPy.xml") == "PartGui"
//	ModuleFor("Gui/DocumentPy.xml") == "FreeCADGui"
//	ModuleFor("Base/VectorPy.xml") == "FreeCAD"
func ModuleFor(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch {
	case len(parts) >= 3 && parts[0] == "Mod":
		if parts[2] == "Gui" {
			return parts[1] + "Gui"
		}
		return parts[1]
	case len(parts) >= 2 && parts[0] == "Gui":
		return "FreeCADGui"
	case len(parts) >= 2 && (parts[0] == "App" || parts[0] == "Base"):
		return "FreeCAD"
	}
	return ""
}

func withoutRevision(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, "# Source revision:") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
