// Command textcad trains the text-to-shape model, generates solids from
// descriptions, and previews assembled scenes.
//
//	textcad train    --data datasets/ --epochs 50
//	textcad generate --text "A sphere with a radius of 2.5 units." --out sphere.obj
//	textcad view     --scene scene.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"textcad/internal/assembler"
	"textcad/internal/cadmesh"
	"textcad/internal/commands"
	"textcad/internal/dataset"
	"textcad/internal/decoder"
	"textcad/internal/generator"
	"textcad/internal/shape"
	"textcad/internal/training"
	"textcad/internal/vectorizer"
	"textcad/internal/viewer"
)

// artifactFlags registers the three artifact paths every subcommand shares.
func artifactFlags(fs *flag.FlagSet) *decoder.Paths {
	p := &decoder.Paths{}
	fs.StringVar(&p.Model, "model", "model.json", "model weights file")
	fs.StringVar(&p.Vectorizer, "vectorizer", "vectorizer.json", "fitted vocabulary file")
	fs.StringVar(&p.Config, "config", "config.yaml", "model configuration file")
	return p
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	reg := commands.NewRegistry()
	registerTrain(reg, logger)
	registerGenerate(reg, logger)
	registerView(reg, logger)

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: textcad <command> [flags]")
		reg.Usage(os.Stderr)
		os.Exit(2)
	}
	if err := reg.Execute(args); err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func registerTrain(reg *commands.Registry, logger *zap.Logger) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	paths := artifactFlags(fs)
	data := fs.String("data", "datasets", "directory of JSON training files")
	epochs := fs.Int("epochs", 0, "training epochs (0 = default)")
	batch := fs.Int("batch", 0, "minibatch size (0 = default)")
	hidden := fs.Int("hidden", 0, "hidden layer width (0 = default)")
	lr := fs.Float64("lr", 0, "learning rate (0 = default)")
	seed := fs.Int64("seed", 0, "random seed (0 = default)")
	retrain := fs.Bool("retrain", false, "continue from the existing artifacts instead of a fresh model")
	history := fs.String("history", "", "append per-epoch losses to this file")

	reg.Register("train", "fit the model on a dataset directory", fs, func() error {
		entries, err := dataset.LoadDir(*data)
		if err != nil {
			return err
		}
		descriptions, params, degenerate, err := dataset.Split(entries)
		if err != nil {
			return err
		}
		if degenerate > 0 {
			logger.Warn("dataset has degenerate entries", zap.Int("count", degenerate))
		}
		logger.Info("dataset loaded", zap.String("dir", *data), zap.Int("examples", len(entries)))

		hp := training.Hyperparameters{
			Epochs:       *epochs,
			BatchSize:    *batch,
			HiddenDim:    *hidden,
			LearningRate: *lr,
			Seed:         *seed,
			HistoryFile:  *history,
		}

		var set *decoder.ArtifactSet
		if *retrain {
			existing, err := decoder.Load(*paths)
			if err != nil {
				return fmt.Errorf("loading artifacts for retraining: %w", err)
			}
			examples, err := training.Prepare(descriptions, params, existing.Vectorizer)
			if err != nil {
				return err
			}
			set, err = training.Retrain(existing, examples, hp, logger)
			if err != nil {
				return err
			}
		} else {
			vec := vectorizer.New()
			vec.Fit(descriptions)
			examples, err := training.Prepare(descriptions, params, vec)
			if err != nil {
				return err
			}
			set, err = training.Train(vec, examples, hp, logger)
			if err != nil {
				return err
			}
		}

		if err := set.Save(*paths); err != nil {
			return err
		}
		logger.Info("artifacts saved",
			zap.String("model", paths.Model),
			zap.String("vectorizer", paths.Vectorizer),
			zap.String("config", paths.Config),
			zap.Int("total_epochs", set.Config.Training.Epochs))
		return nil
	})
}

func registerGenerate(reg *commands.Registry, logger *zap.Logger) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	paths := artifactFlags(fs)
	text := fs.String("text", "", "shape description to decode")
	out := fs.String("out", "out.obj", "OBJ output path")
	scene := fs.String("scene", "", "also save the scene description to this YAML file")
	show := fs.Bool("show", false, "open the result in the viewer")
	var pos, rot [3]float64
	fs.Float64Var(&pos[0], "x", 0, "placement position x")
	fs.Float64Var(&pos[1], "y", 0, "placement position y")
	fs.Float64Var(&pos[2], "z", 0, "placement position z")
	fs.Float64Var(&rot[0], "rx", 0, "placement rotation about x, radians")
	fs.Float64Var(&rot[1], "ry", 0, "placement rotation about y, radians")
	fs.Float64Var(&rot[2], "rz", 0, "placement rotation about z, radians")
	scale := fs.Float64("scale", 1, "uniform scale")

	reg.Register("generate", "decode a description and export the solid", fs, func() error {
		if *text == "" {
			return fmt.Errorf("generate: --text is required")
		}
		set, err := decoder.Load(*paths)
		if err != nil {
			return err
		}
		gen := generator.New(set, cadmesh.NewKernel(), logger)

		placement := shape.Placement{
			Position: [3]float32{float32(pos[0]), float32(pos[1]), float32(pos[2])},
			Rotation: shape.Rotation{X: float32(rot[0]), Y: float32(rot[1]), Z: float32(rot[2])},
			Scale:    float32(*scale),
		}
		desc, err := gen.Describe(*text)
		if err != nil {
			return err
		}
		logger.Info("decoded", zap.Stringer("class", desc.Class))

		doc, err := gen.Generate(*text, placement)
		if err != nil {
			return err
		}
		if err := gen.Export(doc, *out); err != nil {
			return err
		}
		if *scene != "" {
			placed := []assembler.PlacedShape{{Descriptor: desc, Placement: placement}}
			if err := assembler.SaveScene(*scene, placed); err != nil {
				return err
			}
			logger.Info("scene saved", zap.String("path", *scene))
		}
		if *show {
			viewer.Run(viewer.New(doc))
		}
		return nil
	})
}

func registerView(reg *commands.Registry, logger *zap.Logger) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	scene := fs.String("scene", "scene.yaml", "scene description to display")

	reg.Register("view", "display a saved scene", fs, func() error {
		shapes, err := assembler.LoadScene(*scene)
		if err != nil {
			return err
		}
		doc, err := assembler.Assemble(cadmesh.NewKernel(), shapes)
		if err != nil {
			return err
		}
		logger.Info("scene assembled", zap.String("path", *scene), zap.Int("solids", doc.Len()))
		viewer.Run(viewer.New(doc))
		return nil
	})
}
