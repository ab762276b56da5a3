package core

import "strings"

// Section is one block of the human-readable narrative.
// A non-empty Title renders as its own "Title:" line ahead of the lines.
type Section struct {
	Title string
	Lines []string
}

// IndexSection is one block of the condensed index content.
// A non-empty Label renders as a "Label: " prefix ahead of the values.
type IndexSection struct {
	Label  string
	Values []string
}

// EnrichmentSummary holds the narrative and index content built for one image.
// OCRText is empty when the image carried no recognizable text.
type EnrichmentSummary struct {
	Narrative []Section
	Index     []IndexSection
	OCRText   string
}

// AddNarrative appends a narrative section.
func (s *EnrichmentSummary) AddNarrative(title string, lines ...string) {
	s.Narrative = append(s.Narrative, Section{Title: title, Lines: lines})
}

// AddIndex appends an index section.
func (s *EnrichmentSummary) AddIndex(label string, values ...string) {
	s.Index = append(s.Index, IndexSection{Label: label, Values: values})
}

// NarrativeText flattens the narrative sections.
func (s *EnrichmentSummary) NarrativeText() string {
	var b strings.Builder
	for _, section := range s.Narrative {
		if section.Title != "" {
			b.WriteString(section.Title)
			b.WriteString(":\n")
		}
		for _, line := range section.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// IndexContent flattens the index sections into the searchable content field.
func (s *EnrichmentSummary) IndexContent() string {
	var b strings.Builder
	for _, section := range s.Index {
		if section.Label != "" {
			b.WriteString(section.Label)
			b.WriteString(": ")
		}
		for _, value := range section.Values {
			b.WriteString(value)
			b.WriteString("\n ")
		}
	}
	return b.String()
}
