package notion

import (
	"strings"

	"github.com/steveyegge/issuesync/internal/types"
)

// Property types the status property may use.
const (
	StatusTypeStatus = "status"
	StatusTypeSelect = "select"
)

// Properties names the database properties issuesync reads and writes.
// URL and Comments are optional; an empty name means the value is not synced.
type Properties struct {
	Title       string `mapstructure:"title" yaml:"title"`
	Status      string `mapstructure:"status" yaml:"status"`
	StatusType  string `mapstructure:"status_type" yaml:"status_type"`
	Assignees   string `mapstructure:"assignees" yaml:"assignees"`
	Project     string `mapstructure:"project" yaml:"project"`
	ProjectName string `mapstructure:"project_name" yaml:"project_name"`
	URL         string `mapstructure:"url" yaml:"url,omitempty"`
	Comments    string `mapstructure:"comments" yaml:"comments,omitempty"`
}

// DefaultProperties returns the property names of the standard task and
// project database templates.
func DefaultProperties() Properties {
	return Properties{
		Title:       "Task",
		Status:      "Status",
		StatusType:  StatusTypeStatus,
		Assignees:   "Assign",
		Project:     "Projects",
		ProjectName: "Name",
	}
}

// EncodeFields renders field values as a Notion properties object.
func (p Properties) EncodeFields(f types.RecordFields) map[string]interface{} {
	people := make([]map[string]string, 0, len(f.People))
	for _, id := range f.People {
		people = append(people, map[string]string{"id": id})
	}
	relation := make([]map[string]string, 0, 1)
	if f.ProjectID != "" {
		relation = append(relation, map[string]string{"id": f.ProjectID})
	}
	statusType := p.StatusType
	if statusType == "" {
		statusType = StatusTypeStatus
	}

	props := map[string]interface{}{
		p.Title: map[string]interface{}{
			"title": []map[string]interface{}{
				{"type": "text", "text": map[string]string{"content": f.Title}},
			},
		},
		p.Status: map[string]interface{}{
			statusType: map[string]string{"name": string(f.Status)},
		},
		p.Assignees: map[string]interface{}{
			"people": people,
		},
		p.Project: map[string]interface{}{
			"relation": relation,
		},
	}
	if p.URL != "" {
		var u interface{}
		if f.URL != "" {
			u = f.URL
		}
		props[p.URL] = map[string]interface{}{"url": u}
	}
	if p.Comments != "" {
		props[p.Comments] = map[string]interface{}{"number": f.CommentCount}
	}
	return props
}

// DecodeFields reads the synced property values of a page.
func (p Properties) DecodeFields(page *Page) types.RecordFields {
	f := types.RecordFields{
		Title:  PlainText(page.Properties[p.Title].Title),
		People: []string{},
	}

	status := page.Properties[p.Status]
	switch {
	case status.Status != nil:
		f.Status = types.Status(status.Status.Name)
	case status.Select != nil:
		f.Status = types.Status(status.Select.Name)
	}

	for _, u := range page.Properties[p.Assignees].People {
		f.People = append(f.People, u.ID)
	}
	if rel := page.Properties[p.Project].Relation; len(rel) > 0 {
		f.ProjectID = rel[0].ID
	}
	if p.URL != "" {
		if u := page.Properties[p.URL].URL; u != nil {
			f.URL = *u
		}
	}
	if p.Comments != "" {
		if n := page.Properties[p.Comments].Number; n != nil {
			f.CommentCount = int(*n)
		}
	}
	return f
}

// PlainText joins the text of title or rich text segments.
func PlainText(segments []RichText) string {
	var sb strings.Builder
	for _, s := range segments {
		switch {
		case s.PlainText != "":
			sb.WriteString(s.PlainText)
		case s.Text != nil:
			sb.WriteString(s.Text.Content)
		}
	}
	return sb.String()
}
