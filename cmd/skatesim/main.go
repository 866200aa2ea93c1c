package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/schillD/skate-game-sub000/internal/components"
	"github.com/schillD/skate-game-sub000/internal/config"
	"github.com/schillD/skate-game-sub000/internal/engine"
	"github.com/schillD/skate-game-sub000/internal/physics"
)

var (
	dt       float64
	duration float64
	track    string
	detector string
	stepping string
	plot     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skatesim",
		Short: "rigid body physics simulator",
	}

	runCmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "run a scene simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 1.0/60.0, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", 5.0, "duration in seconds")
	runCmd.Flags().StringVar(&track, "track", "", "body name to plot height for")
	runCmd.Flags().StringVar(&detector, "detector", "", "override detector (grid, brute-force)")
	runCmd.Flags().StringVar(&stepping, "stepping", "", "override stepping mode (variable, fixed)")
	runCmd.Flags().BoolVar(&plot, "plot", true, "plot tracked body height")

	validateCmd := &cobra.Command{
		Use:   "validate [scene.yaml]",
		Short: "validate a scene file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ok: %d bodies, detector=%s, stepping=%s\n",
				len(scene.Bodies), scene.World.Detector, scene.World.Stepping)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	sceneCfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if detector != "" {
		sceneCfg.World.Detector = detector
	}
	if stepping != "" {
		sceneCfg.World.Stepping = stepping
	}
	if err := sceneCfg.Validate(); err != nil {
		return err
	}

	scene := sceneCfg.Build()
	world := physics.NewPhysicsWorld(sceneCfg.WorldConfig())
	world.AttachScene(scene)
	scene.Start()

	var tracked *components.Rigidbody
	if track != "" {
		obj := scene.FindByName(track)
		if obj == nil {
			return fmt.Errorf("no body named %q in scene", track)
		}
		tracked = engine.GetComponent[*components.Rigidbody](obj)
	}

	steps := int(duration / dt)
	heights := make([]float64, 0, steps)
	contacts := 0
	world.OnContact.AddListener(func(physics.Contact) { contacts++ })

	fmt.Printf("running %s for %.2fs at dt=%.4fs (%d steps)...\n", args[0], duration, dt, steps)
	start := time.Now()

	for i := 0; i < steps; i++ {
		world.Step(float32(dt))
		if tracked != nil {
			heights = append(heights, float64(tracked.GetGameObject().Transform.Position.Y))
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v (%d contacts)\n\n", elapsed, contacts)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tPOSITION\tVELOCITY\tGROUNDED")
	for _, rb := range world.Bodies() {
		obj := rb.GetGameObject()
		p := obj.Transform.Position
		v := rb.Velocity
		fmt.Fprintf(w, "%s\t(%.2f, %.2f, %.2f)\t(%.2f, %.2f, %.2f)\t%v\n",
			obj.Name, p.X, p.Y, p.Z, v.X, v.Y, v.Z, rb.IsGrounded)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if tracked != nil && plot && len(heights) > 0 {
		fmt.Println()
		graph := asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s height vs time", track)),
		)
		fmt.Println(graph)
	}

	return nil
}
