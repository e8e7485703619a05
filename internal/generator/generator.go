// Package generator is the inference pipeline: it takes free-text shape
// descriptions through the fitted vectorizer and trained decoder and hands
// the resulting descriptors to the assembler. It owns no state beyond the
// loaded artifacts and is safe for concurrent use.
package generator

import (
	"fmt"

	"go.uber.org/zap"

	"textcad/internal/assembler"
	"textcad/internal/decoder"
	"textcad/internal/shape"
)

// Request is one generation input: the description and where to place the
// resulting solid.
type Request struct {
	Text      string
	Placement shape.Placement
}

// Generator decodes descriptions into placed solids.
type Generator struct {
	artifacts *decoder.ArtifactSet
	kernel    assembler.Kernel
	logger    *zap.Logger
}

// New builds a generator over a loaded artifact set and a kernel. A nil
// logger disables logging.
func New(artifacts *decoder.ArtifactSet, kernel assembler.Kernel, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{artifacts: artifacts, kernel: kernel, logger: logger}
}

// Describe runs only the decode half: text in, descriptor out. The descriptor
// is not validated here; Generate rejects unusable parameters when it builds.
func (g *Generator) Describe(text string) (shape.Descriptor, error) {
	features, err := g.artifacts.Vectorizer.Transform(text)
	if err != nil {
		return shape.Descriptor{}, err
	}
	desc, err := g.artifacts.Model.Predict(features)
	if err != nil {
		return shape.Descriptor{}, err
	}
	g.logger.Debug("decoded description",
		zap.String("text", text),
		zap.Stringer("class", desc.Class))
	return desc, nil
}

// Generate decodes one description and assembles it at the given placement.
func (g *Generator) Generate(text string, placement shape.Placement) (*assembler.Document, error) {
	return g.GenerateMany([]Request{{Text: text, Placement: placement}})
}

// GenerateMany decodes every request and assembles the results into one
// document, preserving request order. Decoding and validation both run over
// the full batch before any solid is built, so an undecodable or degenerate
// request never leaves a partial document.
func (g *Generator) GenerateMany(requests []Request) (*assembler.Document, error) {
	shapes := make([]assembler.PlacedShape, 0, len(requests))
	for i, req := range requests {
		desc, err := g.Describe(req.Text)
		if err != nil {
			return nil, fmt.Errorf("generator: request %d: %w", i, err)
		}
		shapes = append(shapes, assembler.PlacedShape{Descriptor: desc, Placement: req.Placement})
	}
	doc, err := assembler.Assemble(g.kernel, shapes)
	if err != nil {
		return nil, err
	}
	g.logger.Info("assembled document", zap.Int("solids", doc.Len()))
	return doc, nil
}

// Assemble builds a document directly from descriptors and placements,
// bypassing text decoding. Useful when descriptors come from a saved scene or
// are constructed programmatically.
func (g *Generator) Assemble(shapes []assembler.PlacedShape) (*assembler.Document, error) {
	return assembler.Assemble(g.kernel, shapes)
}

// Export writes the document through the generator's kernel.
func (g *Generator) Export(doc *assembler.Document, path string) error {
	if err := g.kernel.WriteDocument(doc, path); err != nil {
		return err
	}
	g.logger.Info("wrote document", zap.String("path", path))
	return nil
}
