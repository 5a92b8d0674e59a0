package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/builder"
	"github.com/vnkhanh/survey-platform/editor"
)

// draftFile is the YAML form of a survey draft. Ids are only present in
// files written by "edit --dump" and tie entries to stored entities.
type draftFile struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description,omitempty"`
	Active      bool           `yaml:"active"`
	Theme       []string       `yaml:"theme,omitempty"`
	Questions   []draftFileQst `yaml:"questions"`
}

type draftFileQst struct {
	ID      uint              `yaml:"id,omitempty"`
	Text    string            `yaml:"text"`
	Rating  bool              `yaml:"rating,omitempty"`
	Choices []draftFileChoice `yaml:"choices,omitempty"`
}

// draftFileChoice accepts either a plain string or a mapping with an id.
type draftFileChoice struct {
	ID   uint   `yaml:"id,omitempty"`
	Text string `yaml:"text"`
}

func (c *draftFileChoice) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		c.Text = n.Value
		return nil
	}
	type plain draftFileChoice
	return n.Decode((*plain)(c))
}

func readDraftFile(r io.Reader) (draftFile, error) {
	var f draftFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return f, fmt.Errorf("parse draft: %w", err)
	}
	return f, nil
}

// apply copies the file into d, keeping server ids for edits.
func (f draftFile) apply(d *builder.Draft) {
	d.Title = f.Title
	d.Description = f.Description
	d.IsActive = f.Active
	theme := make([]string, 3)
	copy(theme, f.Theme)
	d.SetTheme(theme[0], theme[1], theme[2])

	d.Questions = d.Questions[:0]
	for _, fq := range f.Questions {
		var q builder.Question
		if fq.Rating {
			q = builder.NewRatingQuestion(fq.Text)
		} else {
			q = builder.Question{DraftID: builder.NewID(), Text: fq.Text, Kind: api.KindChoice}
			for _, fc := range fq.Choices {
				c := builder.NewChoice(fc.Text)
				c.ServerID = fc.ID
				q.Choices = append(q.Choices, c)
			}
		}
		q.ServerID = fq.ID
		d.Questions = append(d.Questions, q)
	}
}

// applyEdit replaces the draft of e with f. Rating questions keep the ids of
// stored rating choices so an unchanged scale is not recreated.
func (f draftFile) applyEdit(e *editor.Edit) {
	stored := map[uint]builder.Question{}
	for _, q := range e.Draft.Questions {
		stored[q.ServerID] = q
	}
	f.apply(e.Draft)
	for qi := range e.Draft.Questions {
		q := &e.Draft.Questions[qi]
		old, ok := stored[q.ServerID]
		if !ok || q.Kind != api.KindRating || old.Kind != api.KindRating {
			continue
		}
		ids := map[string]uint{}
		for _, c := range old.Choices {
			ids[c.Text] = c.ServerID
		}
		for ci := range q.Choices {
			q.Choices[ci].ServerID = ids[q.Choices[ci].Text]
		}
	}
}

func dumpDraftFile(w io.Writer, s api.Survey) error {
	f := draftFile{
		Title:       s.Title,
		Description: s.Description,
		Active:      s.IsActive,
	}
	e := editor.FromSurvey(s)
	f.Theme = e.Draft.Theme[:]
	for _, q := range e.Draft.Questions {
		fq := draftFileQst{ID: q.ServerID, Text: q.Text, Rating: q.Kind == api.KindRating}
		if !fq.Rating {
			for _, c := range q.Choices {
				fq.Choices = append(fq.Choices, draftFileChoice{ID: c.ServerID, Text: c.Text})
			}
		}
		f.Questions = append(f.Questions, fq)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}
