package patterns

// KeywordCategory groups a fixed vocabulary with its scoring weight.
// Matching is a case-folded substring check per keyword; a keyword found
// anywhere in the text adds the category weight once. Substring matching can
// over-count keywords embedded in longer words; that behavior is kept as-is
// so existing classifications stay stable.
type KeywordCategory struct {
	Name     string
	Weight   int
	Keywords []string
}

// keywordCategories is the full classifier vocabulary. Credential, medical
// and legal terms are weighted highest.
var keywordCategories = []KeywordCategory{
	{
		Name:   "confidentiality",
		Weight: 10,
		Keywords: []string{
			"confidencial", "confidential", "secreto", "reservado",
			"restringido", "uso interno", "no divulgar", "clasificado",
			"nda",
		},
	},
	{
		Name:   "compensation",
		Weight: 8,
		Keywords: []string{
			"salario", "nómina", "nomina", "sueldo", "payroll",
			"retribución", "retribucion", "compensación", "compensacion",
			"bonus",
		},
	},
	{
		Name:   "strategic",
		Weight: 8,
		Keywords: []string{
			"adquisición", "adquisicion", "fusión", "fusion", "merger",
			"despido", "reestructuración", "reestructuracion",
			"roadmap", "estrategia",
		},
	},
	{
		Name:   "credential",
		Weight: 20,
		Keywords: []string{
			"contraseña", "password", "api key", "clave privada",
			"private key", "token de acceso", "credenciales",
		},
	},
	{
		Name:   "medical",
		Weight: 15,
		Keywords: []string{
			"diagnóstico", "diagnostico", "enfermedad", "baja médica",
			"baja medica", "tratamiento", "historial clínico",
			"historial clinico", "paciente",
		},
	},
	{
		Name:   "legal",
		Weight: 15,
		Keywords: []string{
			"demanda", "litigio", "juicio", "expediente",
			"sanción", "sancion", "acuerdo de confidencialidad",
			"citación", "citacion",
		},
	},
}

// KeywordCategories returns the classifier vocabulary.
// The returned slice must be treated as read-only.
func KeywordCategories() []KeywordCategory {
	return keywordCategories
}
