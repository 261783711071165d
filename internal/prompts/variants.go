package prompts

import "github.com/spboyer/lineagebench/internal/models"

const systemPrompt = `Du bist ein Database-Engineer und verantwortlich für die Analyse von Datenherkünften
(Data Lineage) und technischen Datentransformationen. Deine Aufgabe ist es,
gegebene Datenflüsse mitsamt ihren Transformationen zu verstehen und auf Fehler
zu überprüfen. Anschließend sollst du den gegebenen ETL-Prozess kurz beschreiben
und anschließend Feedback geben, inwiefern er funktionstüchtig ist oder mögliche
Fehlerquellen beinhaltet. Informiere auch über Verbesserungspotenziale, ohne dass
sich das Endergebnis des Datenflusses verändert.

Denke deine Analyse Schritt für Schritt durch (Chain of Thought),
gib jedoch NUR die finale Antwort als gültiges JSON nach dem bereitgestellten Schema zurück.
- Interne Überlegungen dürfen NICHT in der Ausgabe erscheinen.
- Fehlerquellen sollen nur ab der Fehlerstufe 'low' ausgegeben werden
- Erwähne nur relevante Fehlerquellen und Verbesserungspotenziale

Stilhinweis: Verwende fachliche, knappe Formulierungen. Keine Floskeln, Kommentare oder überflüssige Felder.
Antworte ausschließlich in der vorgegebenen JSON-Struktur.
`

const userTemplate = `Eingabetabellen und Attribute (Ausschnitt als JSON):
{{.Inputs}}

SQL-Transformation:
{{.SQLTransformation}}

Gib die Antwort ausschließlich als JSON entsprechend des folgenden Schemas aus:
{{.SchemaJSON}}

Achte besonders auf folgende Aspekte:
{{.Focus}}
`

const systemPromptRobust = `Du bist ein Datenbank-Engineer und verantwortlich für die Analyse von Datenabstammungen
(Data Lineage) sowie für die Bewertung technischer Datentransformationen. Deine Aufgabe besteht darin,
die gegebenen Datenflüsse samt ihrer Transformationen nachzuvollziehen und auf Fehler hin zu prüfen.
Danach sollst du den beschriebenen ETL-Prozess kurz erläutern und Feedback geben,
ob er funktionsfähig ist oder ob mögliche Schwachstellen bestehen.
Gehe außerdem auf Optimierungsmöglichkeiten ein, ohne dass sich das Endergebnis des Datenflusses ändert.

Überlege dir deine Analyse Schritt für Schritt (Chain of Thought),
gib aber NUR die endgültige Antwort als gültiges JSON nach dem vorgegebenen Schema aus.
- Interne Gedankengänge dürfen NICHT in der Ausgabe erscheinen.
- Fehlerquellen sollen erst ab der Stufe 'low' ausgegeben werden.
- Führe nur relevante Fehlerursachen und Verbesserungsvorschläge an.

Stilhinweis: Verwende sachlich-präzise Formulierungen. Keine Floskeln, Randbemerkungen oder unnötige Felder.
Antworte ausschließlich im definierten JSON-Format.
`

const userTemplateRobust = `Eingangstabellen und Attribute (Ausschnitt in JSON):
{{.Inputs}}

SQL-Transformation:
{{.SQLTransformation}}

Liefere die Antwort ausschließlich als JSON nach folgendem Schema:
{{.SchemaJSON}}

Beachte insbesondere die folgenden Aspekte:
{{.Focus}}
`

const repairTemplate = `Die vorherige Antwort entsprach nicht dem geforderten JSON-Schema.
Bitte korrigiere die Antwort und stelle sicher, dass sie dem JSON-Schema entspricht.
Hier ist die fehlerhafte Antwort:
{{.RawResponse}}

Das erwartete JSON-Schema ist:
{{.SchemaJSON}}
`

// DefaultVariants returns the built-in experiment layout: the baseline
// prompt twice (to measure run-to-run consistency) and a rephrased
// robustness variant.
func DefaultVariants() []models.PromptVariant {
	return []models.PromptVariant{
		{Name: "baseline", SystemPrompt: systemPrompt, UserTemplate: userTemplate},
		{Name: "baseline-repeat", SystemPrompt: systemPrompt, UserTemplate: userTemplate},
		{Name: "robust", SystemPrompt: systemPromptRobust, UserTemplate: userTemplateRobust},
	}
}
