// Package matrixgen configures every cell of the variant matrix with cmake
// and publishes the outputs of the cells whose toolchain is available.
package matrixgen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/goplus/usecmake/internal/install"
	"github.com/goplus/usecmake/internal/lock"
	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/internal/publish"
	"github.com/goplus/usecmake/internal/synth"
	"github.com/goplus/usecmake/internal/toolchain"
	"github.com/goplus/usecmake/variant"
	"github.com/goplus/usecmake/x/cmake"
	"github.com/goplus/usecmake/x/cmake/fileapi"
	"github.com/qiniu/x/log"
	"golang.org/x/sync/errgroup"
)

// Client is the file-API client name queries are filed under.
const Client = "usecmake"

// ReleaseRuntime is the CMAKE_BUILD_TYPE every cell is configured with when
// the release runtime is forced.
const ReleaseRuntime = "RELEASE"

// DefaultQueryTimeout bounds the wait for a code-model reply.
const DefaultQueryTimeout = 10 * time.Minute

// Generator configures a variant matrix.
type Generator struct {
	ProjectDir  string // directory holding the top-level CMakeLists.txt
	BuildRoot   string // each cell is configured in BuildRoot/<cell dir>
	InstallRoot string // each cell installs into InstallRoot/<cell dir>
	Matrix      variant.Matrix

	Resolver toolchain.Resolver
	CMake    *cmake.CMake
	Make     string // make-like driver for makefile toolchains
	Runner   proc.Runner
	Queue    *fileapi.Queue // defaults to a queue for Client

	Arguments []string      // extra configure arguments
	Defines   cmake.Defines // extra cache entries
	Hook      synth.Hook    // applied after Arguments and Defines

	// ForceReleaseRuntime configures every cell as RELEASE while the variant
	// keeps presenting its own build type.
	ForceReleaseRuntime bool

	Jobs         int           // cells configured at once; <= 1 is sequential
	QueryTimeout time.Duration // 0 waits until ctx ends
}

// Published is a configured variant and its output channels.
type Published struct {
	Variant *variant.Variant `json:"variant" yaml:"variant"`
	Outputs []publish.Output `json:"outputs" yaml:"outputs"`
}

// Result is the outcome of a generation pass.
type Result struct {
	Variants []*Published
	Skipped  []variant.TargetMachine // machines without a toolchain
	Dropped  []publish.Dropped
}

// Variant returns the published variant named name.
func (r *Result) Variant(name string) (*Published, bool) {
	for _, p := range r.Variants {
		if p.Variant.Name == name {
			return p, true
		}
	}
	return nil, false
}

type cellResult struct {
	published *Published
	dropped   []publish.Dropped
}

// Generate resolves the toolchain of every machine, configures each cell of
// an available machine once and publishes its outputs. Any failure aborts
// the whole pass.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	m := g.Matrix.Normalize()
	if len(m.Machines) == 0 {
		return nil, fmt.Errorf("no target machines configured")
	}
	if err := g.CMake.CheckFileAPI(ctx); err != nil {
		return nil, err
	}

	result := &Result{}
	selections := make(map[variant.TargetMachine]*toolchain.Selection)
	for _, tm := range m.Machines {
		sel, err := g.Resolver.Resolve(ctx, tm)
		if err != nil {
			return nil, fmt.Errorf("resolve toolchain for %s: %w", tm, err)
		}
		if !sel.Available {
			log.Warnf("No toolchain available for %s, skipping", tm)
			result.Skipped = append(result.Skipped, tm)
			continue
		}
		selections[tm] = sel
	}

	var cells []variant.Cell
	for _, c := range m.Cells() {
		if selections[c.Machine] != nil {
			cells = append(cells, c)
		}
	}

	queue := g.Queue
	if queue == nil {
		queue = fileapi.NewQueue(Client)
	}
	jobs := g.Jobs
	if jobs < 1 {
		jobs = 1
	}

	results := make([]cellResult, len(cells))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, c := range cells {
		v := g.newVariant(m, c)
		sel := selections[c.Machine]
		eg.Go(func() error {
			r, err := g.configure(ctx, queue, sel, v)
			if err != nil {
				return fmt.Errorf("variant %s: %w", v.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		result.Variants = append(result.Variants, r.published)
		result.Dropped = append(result.Dropped, r.dropped...)
	}
	return result, nil
}

func (g *Generator) newVariant(m variant.Matrix, c variant.Cell) *variant.Variant {
	configuredAs := c.BuildType.CMakeName()
	if g.ForceReleaseRuntime {
		configuredAs = ReleaseRuntime
	}
	return &variant.Variant{
		Name:         m.Name(c),
		BuildType:    c.BuildType,
		Machine:      c.Machine,
		Linkage:      c.Linkage,
		ConfiguredAs: configuredAs,
		BuildDir:     filepath.Join(g.BuildRoot, c.Dir()),
		InstallDir:   filepath.Join(g.InstallRoot, c.Dir()),
	}
}

// configure runs the single configure pass of v and publishes its outputs.
func (g *Generator) configure(ctx context.Context, queue *fileapi.Queue, sel *toolchain.Selection, v *variant.Variant) (cellResult, error) {
	unlock, err := lock.Dir(v.BuildDir).Lock()
	if err != nil {
		return cellResult{}, err
	}
	defer unlock()

	if v.Diverges() {
		log.Warnf("Variant %s presents build type %s but is configured as %s", v.Name, v.BuildType, v.ConfiguredAs)
	}

	// The query must exist before the configure pass that answers it.
	req, err := queue.Enqueue(v.BuildDir)
	if err != nil {
		return cellResult{}, err
	}
	cmd, err := synth.Synthesize(ctx, synth.Request{
		Selection:  sel,
		BuildType:  v.ConfiguredAs,
		BuildDir:   v.BuildDir,
		ProjectDir: g.ProjectDir,
		CMake:      g.CMake.Executable(),
		Make:       g.Make,
		Runner:     g.Runner,
		Hook:       g.hook(v),
	})
	if err != nil {
		queue.Resolve(v.BuildDir, err)
		return cellResult{}, err
	}
	log.Infof("Configuring %s in %s", v.Name, v.BuildDir)
	queue.Resolve(v.BuildDir, g.CMake.Configure(ctx, cmd))

	waitCtx := ctx
	if g.QueryTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.QueryTimeout)
		defer cancel()
	}
	model, err := req.Await(waitCtx)
	if err != nil {
		return cellResult{}, err
	}
	conf, err := model.Configuration(v.ConfiguredAs)
	if err != nil {
		return cellResult{}, err
	}
	targets, err := model.Targets(conf)
	if err != nil {
		return cellResult{}, err
	}

	includeDir := install.Layout{Root: v.InstallDir}.Path(install.IncludeDir)
	outputs, dropped := publish.Publish(v, publish.Classify(targets), includeDir)
	return cellResult{
		published: &Published{Variant: v, Outputs: outputs},
		dropped:   dropped,
	}, nil
}

// hook appends the user arguments, the user defines and the linkage of v
// to the synthesized arguments.
func (g *Generator) hook(v *variant.Variant) synth.Hook {
	return func(args []string) []string {
		args = append(args, g.Arguments...)
		defs := g.Defines.Clone()
		if v.Linkage != "" {
			defs.DefineBool("BUILD_SHARED_LIBS", v.Linkage == variant.Shared)
		}
		args = append(args, defs.Args()...)
		if g.Hook != nil {
			args = g.Hook(args)
		}
		return args
	}
}
