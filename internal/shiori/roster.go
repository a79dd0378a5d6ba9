package shiori

import "github.com/Funya-okina/sightseeingLog/internal/models"

const memberLabel = "メンバー"

// roleLabels maps the recognized role tags to their display labels.
var roleLabels = map[string]string{
	"leader":      "リーダー",
	"camera":      "カメラ係",
	"accountant":  "会計係",
	"navigator":   "ナビ係",
	"driver":      "運転係",
	"reservation": "予約係",
}

// BuildRoster normalizes raw member records into labeled roster entries.
// Entries without a name are dropped. If any member supplies a recognized
// role tag, every member is labeled individually (unrecognized or blank tags
// get the generic label). If nobody supplies a role, the first member in
// input order becomes the leader and the rest are plain members.
func BuildRoster(rawMembers []any) []models.Member {
	type entry struct {
		name, role, episode string
	}
	var kept []entry
	anyRole := false
	for _, raw := range rawMembers {
		obj, _ := raw.(map[string]any)
		name := ResolveString(obj, "name")
		if name == "" {
			continue
		}
		role := ResolveString(obj, "role")
		if _, ok := roleLabels[role]; ok {
			anyRole = true
		}
		kept = append(kept, entry{name: name, role: role, episode: ResolveString(obj, "episode")})
	}

	members := make([]models.Member, 0, len(kept))
	for i, e := range kept {
		label := memberLabel
		if anyRole {
			if l, ok := roleLabels[e.role]; ok {
				label = l
			}
		} else if i == 0 {
			label = roleLabels["leader"]
		}
		members = append(members, models.Member{Name: e.name, Label: label, Episode: e.episode})
	}
	return members
}
