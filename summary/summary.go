// Package summary folds a vision analysis result and an image description
// into the narrative and index content of an enrichment summary.
package summary

import (
	"fmt"
	"strings"

	"github.com/poiesic/enrichit/core"
)

// Index labels. Tags are deliberately unlabelled in the index content.
const (
	LabelCaption       = "Caption"
	LabelDenseCaptions = "DeepCaptions"
	LabelObjects       = "Descriptions"
	LabelOCRText       = "OCR Text"
)

// Narrative section titles.
const (
	TitleCaption       = "Caption"
	TitleDenseCaptions = "Dense Captions"
	TitleObjects       = "Objects"
	TitleTags          = "Tags"
	TitleRawOCR        = "Raw OCR Text"
)

// Build assembles the summary for one image. Sections are appended in a fixed
// order: description, caption, dense captions, objects, tags, OCR. The
// description section is always present, labelled with fileName even when the
// description is empty. Other absent sections contribute nothing. Caption and
// dense captions are only considered when gpuCapable is set.
func Build(result *core.VisionResult, description, fileName string, gpuCapable bool) core.EnrichmentSummary {
	var s core.EnrichmentSummary

	s.AddNarrative("", fmt.Sprintf("%s Description: %s", fileName, description))
	s.AddIndex(fileName+" Description", description)

	if result == nil {
		return s
	}

	if gpuCapable {
		addCaption(&s, result.Caption)
		addDenseCaptions(&s, result.DenseCaptions)
	}
	addObjects(&s, result.Objects)
	addTags(&s, result.Tags)
	addOCR(&s, result.OCRLines)

	return s
}

func addCaption(s *core.EnrichmentSummary, caption *core.Caption) {
	if caption == nil {
		return
	}
	s.AddNarrative(TitleCaption, fmt.Sprintf("\t'%s', Confidence %.4f", caption.Text, caption.Confidence))
	s.AddIndex(LabelCaption, caption.Text)
}

func addDenseCaptions(s *core.EnrichmentSummary, captions []core.Caption) {
	if len(captions) == 0 {
		return
	}
	lines := make([]string, 0, len(captions))
	values := make([]string, 0, len(captions))
	for _, c := range captions {
		lines = append(lines, fmt.Sprintf("\t'%s', Confidence: %.4f", c.Text, c.Confidence))
		values = append(values, c.Text)
	}
	s.AddNarrative(TitleDenseCaptions, lines...)
	s.AddIndex(LabelDenseCaptions, values...)
}

func addObjects(s *core.EnrichmentSummary, objects []core.Detection) {
	if len(objects) == 0 {
		return
	}
	lines := make([]string, 0, len(objects))
	values := make([]string, 0, len(objects))
	for _, o := range objects {
		lines = append(lines, fmt.Sprintf("\t'%s', Confidence: %.4f", o.Name, o.Confidence))
		values = append(values, o.Name)
	}
	s.AddNarrative(TitleObjects, lines...)
	s.AddIndex(LabelObjects, values...)
}

func addTags(s *core.EnrichmentSummary, tags []core.Detection) {
	if len(tags) == 0 {
		return
	}
	lines := make([]string, 0, len(tags))
	values := make([]string, 0, len(tags))
	for _, t := range tags {
		lines = append(lines, fmt.Sprintf("\t'%s', Confidence %.4f", t.Name, t.Confidence))
		values = append(values, t.Name)
	}
	s.AddNarrative(TitleTags, lines...)
	s.AddIndex("", values...)
}

func addOCR(s *core.EnrichmentSummary, words []string) {
	if len(words) == 0 {
		return
	}
	s.AddNarrative(TitleRawOCR, words...)
	s.OCRText = strings.Join(words, "\n") + "\n"
}

// AddOCRText appends the final OCR text to the index content.
// Callers add it once, after translation has been resolved.
func AddOCRText(s *core.EnrichmentSummary, text string) {
	if text == "" {
		return
	}
	s.AddIndex(LabelOCRText, text)
}
