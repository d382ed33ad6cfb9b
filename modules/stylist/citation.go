package stylist

import (
	"style-assistant-server/modules/common/gemini"
	"style-assistant-server/modules/common/model"
)

// NormalizeSources turns grounding chunks into citations.
// URI and title are each taken from the first descriptor (web, then maps) that
// has a non-empty value. Chunks that resolve to no URI are dropped; order is kept.
func NormalizeSources(chunks []gemini.GroundingChunk) []model.Source {
	out := make([]model.Source, 0, len(chunks))
	for _, chunk := range chunks {
		var src model.Source
		for _, d := range chunk.Descriptors() {
			if src.URI == "" {
				src.URI = d.URI
			}
			if src.Title == "" {
				src.Title = d.Title
			}
		}
		if src.URI == "" {
			continue
		}
		out = append(out, src)
	}
	return out
}

func cloneSources(src []model.Source) []model.Source {
	if src == nil {
		return nil
	}
	out := make([]model.Source, len(src))
	copy(out, src)
	return out
}
