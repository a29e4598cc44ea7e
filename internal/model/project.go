package model

import "fmt"

// Project is a workgroup record from the project-listing endpoint.
type Project struct {
	ID          ID     `json:"ID"`
	Name        string `json:"NAME"`
	Description string `json:"DESCRIPTION"`
	DateCreate  string `json:"DATE_CREATE"`
}

// Department is an organizational unit from the department-listing
// endpoint, used only to narrow the user set in the plan-vs-fact report.
type Department struct {
	ID     ID     `json:"ID"`
	Name   string `json:"NAME"`
	Parent ID     `json:"PARENT"`
}

// FallbackProjectName synthesizes a display name for a project id that
// has no matching record.
func FallbackProjectName(id ID) string {
	return fmt.Sprintf("Project #%d", id)
}

// ProjectIndex builds an id lookup over a project list.
func ProjectIndex(projects []Project) map[ID]Project {
	idx := make(map[ID]Project, len(projects))
	for _, p := range projects {
		idx[p.ID] = p
	}
	return idx
}

// ProjectDisplayName resolves the display name for a project id,
// synthesizing one when the id has no match or the match is unnamed.
func ProjectDisplayName(idx map[ID]Project, id ID) string {
	if p, ok := idx[id]; ok && p.Name != "" {
		return p.Name
	}
	return FallbackProjectName(id)
}
