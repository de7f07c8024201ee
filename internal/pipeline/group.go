package pipeline

import "go-scout-export/internal/model"

// GroupRecords regroups fetched scouts by template. Groups appear in the
// order their template is first seen, teams inside a group keep fetch order
// and each team's scouts keep their order. Every scout lands in exactly one
// group and teams without scouts produce no entries.
func GroupRecords(records []model.TeamRecords) []model.Group {
	var groups []model.Group
	groupIndex := make(map[string]int)
	// teamIndex[group][team id] is the team's position inside that group
	teamIndex := make(map[string]map[string]int)

	for _, tr := range records {
		for _, scout := range tr.Scouts {
			gi, ok := groupIndex[scout.TemplateID]
			if !ok {
				gi = len(groups)
				groupIndex[scout.TemplateID] = gi
				teamIndex[scout.TemplateID] = make(map[string]int)
				groups = append(groups, model.Group{ID: scout.TemplateID})
			}

			teams := teamIndex[scout.TemplateID]
			ti, ok := teams[tr.Team.ID]
			if !ok {
				ti = len(groups[gi].Teams)
				teams[tr.Team.ID] = ti
				groups[gi].Teams = append(groups[gi].Teams, model.TeamRecords{Team: tr.Team})
			}
			groups[gi].Teams[ti].Scouts = append(groups[gi].Teams[ti].Scouts, scout)
		}
	}
	return groups
}

// GroupIDs returns the ids of groups in order.
func GroupIDs(groups []model.Group) []string {
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}

// CountRecords returns the total number of scouts across records.
func CountRecords(records []model.TeamRecords) int {
	n := 0
	for _, tr := range records {
		n += len(tr.Scouts)
	}
	return n
}
