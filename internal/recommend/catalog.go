package recommend

import "github.com/studyhub/resource-aggregator/internal/aggregator"

// SubjectCategory is one curated fine-grained subject area. Keywords
// drive the matcher; Topics seed the recommendation query; Route picks
// which sources are searched.
type SubjectCategory struct {
	Name     string
	Keywords []string
	Topics   []string
	Route    aggregator.Category
}

// Career is a coarse curated study program grouping several subject
// categories. It matches as a fallback when no category does.
type Career struct {
	Name       string
	Keywords   []string
	Categories []SubjectCategory
}

// Catalog is the curated career/category table, loaded once at startup
// and never mutated; concurrent reads need no locking. Declaration
// order is the tie-break order for matching.
var Catalog = []Career{
	{
		Name:     "Medicina",
		Keywords: []string{"medicina", "medico", "salud", "clinica"},
		Categories: []SubjectCategory{
			{
				Name:     "Anatomía",
				Keywords: []string{"anatomia", "anatomy", "morfologia"},
				Topics:   []string{"human anatomy", "gross anatomy"},
				Route:    aggregator.CategoryMedical,
			},
			{
				Name:     "Fisiología",
				Keywords: []string{"fisiologia", "physiology"},
				Topics:   []string{"human physiology"},
				Route:    aggregator.CategoryMedical,
			},
			{
				Name:     "Farmacología",
				Keywords: []string{"farmacologia", "pharmacology", "farmaco"},
				Topics:   []string{"pharmacology", "drug therapy"},
				Route:    aggregator.CategoryMedical,
			},
			{
				Name:     "Patología",
				Keywords: []string{"patologia", "pathology"},
				Topics:   []string{"pathology", "disease mechanisms"},
				Route:    aggregator.CategoryMedical,
			},
		},
	},
	{
		Name:     "Kinesiología",
		Keywords: []string{"kinesiologia", "kinesiology", "rehabilitacion"},
		Categories: []SubjectCategory{
			{
				Name:     "Biomecánica",
				Keywords: []string{"biomecanica", "biomechanics"},
				Topics:   []string{"biomechanics", "human movement"},
				Route:    aggregator.CategoryPapers,
			},
			{
				Name:     "Kinesiterapia",
				Keywords: []string{"kinesiterapia", "fisioterapia", "physiotherapy", "physical therapy"},
				Topics:   []string{"physical therapy", "rehabilitation"},
				Route:    aggregator.CategoryMedical,
			},
		},
	},
	{
		Name:     "Enfermería",
		Keywords: []string{"enfermeria", "nursing"},
		Categories: []SubjectCategory{
			{
				Name:     "Cuidados de Enfermería",
				Keywords: []string{"cuidados", "nursing care"},
				Topics:   []string{"nursing care", "patient care"},
				Route:    aggregator.CategoryMedical,
			},
			{
				Name:     "Salud Pública",
				Keywords: []string{"salud publica", "public health", "epidemiologia"},
				Topics:   []string{"public health", "epidemiology"},
				Route:    aggregator.CategoryPapers,
			},
		},
	},
	{
		Name:     "Ingeniería Informática",
		Keywords: []string{"informatica", "computacion", "software", "sistemas"},
		Categories: []SubjectCategory{
			{
				Name:     "Programación",
				Keywords: []string{"programacion", "programming", "algoritmos", "algorithms"},
				Topics:   []string{"computer programming", "algorithms"},
				Route:    aggregator.CategoryBooks,
			},
			{
				Name:     "Bases de Datos",
				Keywords: []string{"bases de datos", "database", "sql"},
				Topics:   []string{"database systems", "data management"},
				Route:    aggregator.CategoryBooks,
			},
			{
				Name:     "Inteligencia Artificial",
				Keywords: []string{"inteligencia artificial", "machine learning", "aprendizaje automatico"},
				Topics:   []string{"artificial intelligence", "machine learning"},
				Route:    aggregator.CategoryPapers,
			},
		},
	},
	{
		Name:     "Psicología",
		Keywords: []string{"psicologia", "psychology"},
		Categories: []SubjectCategory{
			{
				Name:     "Psicología Clínica",
				Keywords: []string{"psicologia clinica", "clinical psychology", "psicoterapia"},
				Topics:   []string{"clinical psychology", "psychotherapy"},
				Route:    aggregator.CategoryPapers,
			},
			{
				Name:     "Neurociencia",
				Keywords: []string{"neurociencia", "neuroscience", "neuro"},
				Topics:   []string{"neuroscience", "cognitive science"},
				Route:    aggregator.CategoryPapers,
			},
		},
	},
	{
		Name:     "Derecho",
		Keywords: []string{"derecho", "leyes", "juridico", "law"},
		Categories: []SubjectCategory{
			{
				Name:     "Derecho Civil",
				Keywords: []string{"derecho civil", "civil law"},
				Topics:   []string{"civil law"},
				Route:    aggregator.CategoryBooks,
			},
			{
				Name:     "Derecho Penal",
				Keywords: []string{"derecho penal", "criminal law", "penal"},
				Topics:   []string{"criminal law"},
				Route:    aggregator.CategoryBooks,
			},
		},
	},
}
