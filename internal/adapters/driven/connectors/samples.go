package connectors

import (
	"fmt"
	"strings"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Embedded corpora served when a provider has no credentials configured.
// Real texts, stable IDs, small enough to index in milliseconds.

var legifranceCorpus = []driven.RawRecord{
	{
		"id":      "LEGIARTI000006436298",
		"title":   "Article 544 du code civil",
		"content": "La propriété est le droit de jouir et disposer des choses de la manière la plus absolue, pourvu qu'on n'en fasse pas un usage prohibé par les lois ou par les règlements.",
		"type":    string(domain.DocTypeLoi),
		"date":    "1804-02-06",
		"url":     "https://www.legifrance.gouv.fr/codes/article_lc/LEGIARTI000006436298",
	},
	{
		"id":      "LEGIARTI000006901112",
		"title":   "Article L1231-1 du code du travail",
		"content": "Le contrat de travail à durée indéterminée peut être rompu à l'initiative de l'employeur ou du salarié, ou d'un commun accord, dans les conditions prévues par les dispositions du présent titre. Ces dispositions ne sont pas applicables pendant la période d'essai.",
		"type":    string(domain.DocTypeLoi),
		"date":    "2008-05-01",
		"url":     "https://www.legifrance.gouv.fr/codes/article_lc/LEGIARTI000006901112",
	},
	{
		"id":      "LEGIARTI000006902270",
		"title":   "Article L1232-1 du code du travail",
		"content": "Tout licenciement pour motif personnel est motivé dans les conditions définies par le présent chapitre. Il est justifié par une cause réelle et sérieuse.",
		"type":    string(domain.DocTypeLoi),
		"date":    "2008-05-01",
		"url":     "https://www.legifrance.gouv.fr/codes/article_lc/LEGIARTI000006902270",
	},
	{
		"id":      "JURITEXT000047023978",
		"title":   "Cass. soc., arrêt n° 21-11.330 du 1er février 2023",
		"content": "La cour de cassation rappelle que le licenciement prononcé pendant un arrêt maladie est nul s'il est motivé par l'état de santé du salarié, la discrimination en raison de l'état de santé étant prohibée.",
		"type":    string(domain.DocTypeJurisprudence),
		"date":    "2023-02-01",
		"url":     "https://www.legifrance.gouv.fr/juri/id/JURITEXT000047023978",
	},
}

var eurlexCorpus = []driven.RawRecord{
	{
		"id":      "32016R0679",
		"title":   "Règlement (UE) 2016/679 - RGPD",
		"content": "Le présent règlement établit des règles relatives à la protection des personnes physiques à l'égard du traitement des données à caractère personnel et des règles relatives à la libre circulation de ces données. Il protège les libertés et droits fondamentaux des personnes physiques, et en particulier leur droit à la protection des données à caractère personnel.",
		"type":    string(domain.DocTypeRegulationEU),
		"date":    "2016-04-27",
		"url":     "https://eur-lex.europa.eu/legal-content/FR/TXT/?uri=CELEX:32016R0679",
	},
	{
		"id":      "32019L0771",
		"title":   "Directive (UE) 2019/771 relative aux contrats de vente de biens",
		"content": "La présente directive établit des règles communes concernant certaines exigences relatives aux contrats de vente conclus entre vendeurs et consommateurs, en particulier la conformité des biens au contrat, les recours en cas de défaut de conformité et la garantie commerciale.",
		"type":    string(domain.DocTypeDirectiveEU),
		"date":    "2019-05-20",
		"url":     "https://eur-lex.europa.eu/legal-content/FR/TXT/?uri=CELEX:32019L0771",
	},
}

var conseilConstCorpus = []driven.RawRecord{
	{
		"id":      "2023-1046-DC",
		"title":   "Décision n° 2023-1046 DC du 14 avril 2023 - Loi de financement rectificative de la sécurité sociale",
		"content": "Le Conseil constitutionnel a été saisi de la loi de financement rectificative de la sécurité sociale pour 2023 portant réforme des retraites. Il juge conformes à la Constitution les dispositions relevant le seuil de l'âge légal de départ à la retraite.",
		"type":    string(domain.DocTypeDecisionConst),
		"date":    "2023-04-14",
		"url":     "https://www.conseil-constitutionnel.fr/decision/2023/20231046DC.htm",
	},
	{
		"id":      "2021-940-QPC",
		"title":   "Décision n° 2021-940 QPC du 15 octobre 2021",
		"content": "Le Conseil constitutionnel juge que les dispositions contestées relatives à la conservation généralisée des données de connexion méconnaissent le droit au respect de la vie privée et les déclare contraires à la Constitution.",
		"type":    string(domain.DocTypeDecisionConst),
		"date":    "2021-10-15",
		"url":     "https://www.conseil-constitutionnel.fr/decision/2021/2021940QPC.htm",
	},
}

var judilibreCorpus = []driven.RawRecord{
	{
		"id":      "63a54123d6cd3ecc7dd95cf2",
		"title":   "Cour de cassation, Chambre civile 1, pourvoi n° 21-19.963 (Cassation)",
		"content": "Selon l'article 544 du code civil, la propriété est le droit de jouir et disposer des choses de la manière la plus absolue, pourvu qu'on n'en fasse pas un usage prohibé par les lois ou par les règlements.",
		"type":    string(domain.DocTypeJurisprudence),
		"date":    "2022-11-30",
		"url":     "https://www.courdecassation.fr/decision/63a54123d6cd3ecc7dd95cf2",
	},
	{
		"id":      "63a54123d6cd3ecc7dd95cf3",
		"title":   "Cour de cassation, Chambre sociale, pourvoi n° 21-18.245 (Rejet)",
		"content": "Le licenciement prononcé par un employeur pour un motif lié à l'exercice normal du droit de grève par un salarié est nul.",
		"type":    string(domain.DocTypeJurisprudence),
		"date":    "2022-11-29",
		"url":     "https://www.courdecassation.fr/decision/63a54123d6cd3ecc7dd95cf3",
	},
}

func legifranceSamples(method string) ([]driven.RawRecord, error) {
	switch method {
	case "fetch_recent_laws", "fetch_code_articles":
		return legifranceCorpus, nil
	default:
		return nil, fmt.Errorf("legifrance: method %q: %w", method, domain.ErrUnknownMethod)
	}
}

// sampleSearch filters a corpus by naive keyword match over title and
// content, the offline stand-in for a provider's search endpoint.
func sampleSearch(corpus []driven.RawRecord, query string, limit int) []driven.RawRecord {
	words := strings.Fields(strings.ToLower(query))
	var out []driven.RawRecord
	for _, rec := range corpus {
		text := strings.ToLower(rec["title"].(string) + " " + rec["content"].(string))
		for _, w := range words {
			if len(w) > 3 && strings.Contains(text, w) {
				out = append(out, rec)
				break
			}
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
