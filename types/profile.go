package types

// ProfileDocument holds one user's full portfolio content. The seven base
// keys listed in RequiredProfileFields must always be present; any nested
// shape below them is client-defined and opaque to the server. Clients may
// add further top-level sections (theme, social) which are stored verbatim.
type ProfileDocument map[string]any

// RequiredProfileFields are the top-level keys every saved document must
// carry. Enforced on save, not on read.
var RequiredProfileFields = []string{
	"personal",
	"education",
	"experience",
	"volunteering",
	"skills",
	"projects",
	"certificates",
}

// DefaultProfileDocument returns the document seeded for new accounts and
// served when a user has no stored document yet.
func DefaultProfileDocument() ProfileDocument {
	return ProfileDocument{
		"personal": map[string]any{
			"name":      "",
			"location":  "",
			"phone":     "",
			"email":     "",
			"objective": "",
			"cv":        "",
		},
		"education": map[string]any{
			"degree":      "",
			"institution": "",
			"year":        "",
		},
		"experience":   []any{},
		"volunteering": []any{},
		"certificates": []any{},
		"skills": map[string]any{
			"technical": []any{},
			"teaching":  []any{},
			"languages": []any{},
		},
		"projects": map[string]any{
			"electronics": []any{},
			"web":         []any{},
			"trainings":   []any{},
		},
	}
}
