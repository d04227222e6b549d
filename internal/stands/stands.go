// Package stands holds the fixed catalog of collectible stands.
package stands

import (
	"strings"

	"github.com/vandelli/summit/internal/models"
)

// Catalog is the fixed set of ten stands visitors can collect.
var Catalog = []models.Stand{
	{ID: "STAND1", Name: "Fortinet"},
	{ID: "STAND2", Name: "CATO Networks"},
	{ID: "STAND3", Name: "Microsoft"},
	{ID: "STAND4", Name: "Netskope"},
	{ID: "STAND5", Name: "Splunk"},
	{ID: "STAND6", Name: "Trend Micro"},
	{ID: "STAND7", Name: "Arrow ECS"},
	{ID: "STAND8", Name: "Conservatory"},
	{ID: "STAND9", Name: "Botanical Lab"},
	{ID: "STAND10", Name: "Ajuda View"},
}

// Lookup resolves a scanned stand code against the catalog.
// Codes are matched case-insensitively with surrounding whitespace ignored,
// since scanner input is often uppercased or padded.
func Lookup(code string) (models.Stand, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, s := range Catalog {
		if s.ID == code {
			return s, true
		}
	}
	return models.Stand{}, false
}
