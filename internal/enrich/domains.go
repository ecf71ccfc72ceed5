package enrich

import (
	"sort"
	"strings"
)

// domainKeywords drives the keyword-based classifier used whenever no ML
// classifier is configured. It is the default classifier, not an error
// path: it must always yield at least one label.
var domainKeywords = map[string][]string{
	"fiscal":                   {"impôt", "fiscal", "taxe", "tva", "bénéfice", "revenu", "imposition"},
	"travail":                  {"travail", "salarié", "employeur", "contrat de travail", "licenciement", "embauche"},
	"affaires":                 {"société", "commercial", "entreprise", "contrat", "associé", "responsabilité"},
	"famille":                  {"famille", "mariage", "divorce", "adoption", "garde", "pension", "succession"},
	"immobilier":               {"immobilier", "bail", "loyer", "propriété", "copropriété", "logement"},
	"consommation":             {"consommateur", "garantie", "défaut", "achat", "vente", "remboursement"},
	"penal":                    {"pénal", "infraction", "crime", "délit", "peine", "amende", "prison"},
	"administratif":            {"administratif", "préfet", "décision", "recours", "service public"},
	"constitutionnel":          {"constitution", "constitutionnel", "loi", "principe", "liberté"},
	"rgpd":                     {"rgpd", "données", "cnil", "protection", "traitement", "information"},
	"propriete_intellectuelle": {"propriété intellectuelle", "marque", "brevet", "droit d'auteur"},
	"environnement":            {"environnement", "pollution", "écologie", "développement durable"},
	"sante":                    {"santé", "médecin", "patient", "hôpital", "soins", "médical"},
	"securite_sociale":         {"sécurité sociale", "cotisation", "assurance maladie", "retraite", "prestation"},
	"europeen":                 {"européen", "union européenne", "ue", "directive", "règlement européen"},
}

const fallbackDomain = "autre"

// ClassifyDomains tags free text with its most likely legal domains
// using the keyword table. Exposed for query analysis, which reuses the
// same table to route questions without an LLM.
func ClassifyDomains(title, content string) []string {
	return classifyByKeywords(title, content)
}

// classifyByKeywords scores each legal domain by keyword occurrence count
// over title+content and returns the top three. Ties are broken by
// ascending domain name so repeated calls over the same content return
// the same labels. Returns ["autre"] when nothing matches.
func classifyByKeywords(title, content string) []string {
	text := strings.ToLower(title + " " + content)

	type hit struct {
		domain string
		score  int
	}
	var hits []hit
	for dom, keywords := range domainKeywords {
		score := 0
		for _, kw := range keywords {
			score += strings.Count(text, kw)
		}
		if score > 0 {
			hits = append(hits, hit{dom, score})
		}
	}
	if len(hits) == 0 {
		return []string{fallbackDomain}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].domain < hits[j].domain
	})
	if len(hits) > 3 {
		hits = hits[:3]
	}
	domains := make([]string, len(hits))
	for i, h := range hits {
		domains[i] = h.domain
	}
	return domains
}
