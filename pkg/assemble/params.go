package assemble

import (
	"encoding/json"
	"time"
)

// DateLayout is the edition date format written on diagrams.
const DateLayout = "02/01/2006"

// ProjectParams is the metadata printed in every page's title block.
type ProjectParams struct {
	Author        string `json:"author"`
	SiteName      string `json:"siteName"`
	CabinetName   string `json:"cabinetName"`
	EditionDate   string `json:"editionDate"`
	RevisionIndex string `json:"revisionIndex"`
}

// WithDefaults fills EditionDate with now when it is empty. Other fields
// default to the empty string.
func (p ProjectParams) WithDefaults(now time.Time) ProjectParams {
	if p.EditionDate == "" {
		p.EditionDate = now.Format(DateLayout)
	}
	return p
}

// paramKeys lists accepted JSON keys per field, first match wins.
var paramKeys = struct {
	author, site, cabinet, date, revision []string
}{
	author:   []string{"author", "auteur", "Auteur"},
	site:     []string{"siteName", "nomSite", "Nom du site", "nomProjet"},
	cabinet:  []string{"cabinetName", "nomArmoire", "Nom armoire"},
	date:     []string{"editionDate", "dateEdition", "Date dernière édition"},
	revision: []string{"revisionIndex", "indice", "Indice"},
}

// UnmarshalJSON accepts the English field names and the French keys posted
// by the legacy web form. Empty values fall through to the next key.
func (p *ProjectParams) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	pick := func(keys []string) string {
		for _, k := range keys {
			if s, ok := fields[k].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	*p = ProjectParams{
		Author:        pick(paramKeys.author),
		SiteName:      pick(paramKeys.site),
		CabinetName:   pick(paramKeys.cabinet),
		EditionDate:   pick(paramKeys.date),
		RevisionIndex: pick(paramKeys.revision),
	}
	return nil
}
