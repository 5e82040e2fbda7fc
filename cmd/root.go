package cmd

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sculpt-engine/sculpt-engine/sculpt"
	"github.com/sculpt-engine/sculpt-engine/sculpt/journal"
	_ "github.com/sculpt-engine/sculpt-engine/sculpt/sdfkernel" // registers the default kernel
)

var (
	// CLI flags for scene processing
	scenePath        string        // Path to the scene YAML file
	outPath          string        // Output STL path
	logLevel         string        // Log verbosity level
	meshTolerance    float64       // Linear meshing tolerance in scene units
	angularTolerance float64       // Angular meshing tolerance in radians
	journalLevel     string        // Operation journal level (none, ops)
	initTimeout      time.Duration // Upper bound on waiting for kernel initialization
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sculpt",
	Short: "Parametric boolean-history solid modeling engine",
}

// runCmd resolves a scene's overlaps and exports the result
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve a scene's boolean operations and export STL",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenePath == "" {
			logrus.Fatalf("No scene file provided. Exiting.")
		}
		if !journal.IsValidLevel(journalLevel) {
			logrus.Fatalf("Invalid journal level: %s", journalLevel)
		}

		scene, err := LoadScene(scenePath)
		if err != nil {
			logrus.Fatalf("Failed to load scene: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		kernel, err := sculpt.NewProvider().Kernel(ctx)
		if err != nil {
			logrus.Fatalf("Geometry kernel unavailable: %v", err)
		}

		cfg := sculpt.DefaultEngineConfig()
		cfg.Mesh.Tolerance = meshTolerance
		cfg.Mesh.AngularTolerance = angularTolerance

		engine := sculpt.NewEngine(kernel, cfg)
		j := journal.New(journal.Level(journalLevel))
		engine.SetJournal(j)

		if err := buildScene(engine, scene); err != nil {
			logrus.Fatalf("Failed to build scene: %v", err)
		}

		mutations, err := engine.ResolveAll(0)
		if err != nil {
			logrus.Fatalf("Boolean resolution failed: %v", err)
		}
		logrus.Infof("Resolved %d boolean operation(s), %d object(s) remain", mutations, len(engine.Objects()))

		if err := applySceneFillets(engine, scene); err != nil {
			logrus.Fatalf("Fillet failed: %v", err)
		}

		if outPath != "" {
			if err := exportSTL(engine, outPath); err != nil {
				logrus.Fatalf("STL export failed: %v", err)
			}
			logrus.Infof("Wrote %s", outPath)
		}

		if journal.Level(journalLevel) == journal.LevelOps {
			s := journal.Summarize(j)
			logrus.Infof("Journal: %d cut(s), %d failed, %d replay(s), %d fillet(s) applied, %d skipped",
				s.Cuts, s.FailedCuts, s.Replays, s.FilletsApplied, s.FilletsSkipped)
		}
	},
}

// buildScene instantiates scene objects in file order, which is also the
// deterministic pair-scan order of the boolean pipeline.
func buildScene(engine *sculpt.Engine, scene *Scene) error {
	for _, so := range scene.Objects {
		var (
			o   *sculpt.Object
			err error
		)
		switch so.Type {
		case "cylinder":
			o, err = engine.AddCylinder(so.Name, so.Size[2], so.Size[0]/2, vec(so.Position), vec(so.Rotation))
		case "sphere":
			o, err = engine.AddSphere(so.Name, so.Size[0]/2, vec(so.Position))
		default:
			o, err = engine.AddBox(so.Name, vec(so.Size), vec(so.Position), vec(so.Rotation))
		}
		if err != nil {
			return err
		}
		if so.Group != "" {
			o.GroupID = so.Group
		}
	}
	return nil
}

// applySceneFillets runs the fillet requests against whatever objects
// survived boolean resolution. A fillet naming a consumed object is
// skipped, matching the engine's per-record recovery semantics.
func applySceneFillets(engine *sculpt.Engine, scene *Scene) error {
	byName := make(map[string]*sculpt.Object)
	for _, o := range engine.Objects() {
		byName[o.Name] = o
	}
	for _, f := range scene.Fillets {
		o, ok := byName[f.Object]
		if !ok {
			logrus.Warnf("fillet target %q was consumed by a boolean operation, skipped", f.Object)
			continue
		}
		err := engine.AddFillet(o.ID,
			sculpt.FilletDescriptor{Normal: vec(f.FaceA.Normal), Center: vec(f.FaceA.Center)},
			sculpt.FilletDescriptor{Normal: vec(f.FaceB.Normal), Center: vec(f.FaceB.Center)},
			f.Radius)
		if err != nil {
			return err
		}
	}
	return nil
}

// stlWriter is implemented by kernels that can export STL directly.
type stlWriter interface {
	WriteSTL(s sculpt.Solid, path string, tolerance float64) error
}

// exportSTL unions every remaining solid in world space and writes one STL.
func exportSTL(engine *sculpt.Engine, path string) error {
	kernel := engine.Kernel()
	w, ok := kernel.(stlWriter)
	if !ok {
		logrus.Fatalf("Kernel %T cannot export STL", kernel)
	}

	// Superseded intermediate handles are released as the union grows.
	// Handles still owned by scene objects are left alone: ToWorld returns
	// the input handle unchanged for an identity transform.
	var combined sculpt.Solid
	ownsCombined := false
	for _, o := range engine.Objects() {
		if o.Solid == nil {
			continue
		}
		world := sculpt.ToWorld(kernel, o.Solid, o.Position, o.Rotation, o.Scale)
		ownsWorld := world != o.Solid
		if combined == nil {
			combined, ownsCombined = world, ownsWorld
			continue
		}
		u, err := kernel.Union(combined, world)
		if ownsCombined {
			kernel.Release(combined)
		}
		if ownsWorld {
			kernel.Release(world)
		}
		if err != nil {
			return err
		}
		combined, ownsCombined = u, true
	}
	if combined == nil {
		logrus.Warnf("Nothing to export: no object carries a solid")
		return nil
	}
	err := w.WriteSTL(combined, path, engine.Config().Mesh.Tolerance)
	if ownsCombined {
		kernel.Release(combined)
	}
	return err
}

func init() {
	runCmd.Flags().StringVar(&scenePath, "scene", "", "path to scene YAML file")
	runCmd.Flags().StringVar(&outPath, "out", "", "output STL path (empty = no export)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().Float64Var(&meshTolerance, "mesh-tolerance", 0.5, "linear meshing tolerance in scene units")
	runCmd.Flags().Float64Var(&angularTolerance, "angular-tolerance", 0.5, "angular meshing tolerance in radians")
	runCmd.Flags().StringVar(&journalLevel, "journal", "none", "operation journal level (none, ops)")
	runCmd.Flags().DurationVar(&initTimeout, "init-timeout", 60*time.Second, "kernel initialization timeout")

	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
