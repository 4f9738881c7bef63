package model

import "fmt"

// Session is one teachable unit. Sessions are immutable curriculum reference
// data; only the extrinsic completion flag varies per user.
type Session struct {
	ID            string `json:"id"`
	SessionNumber int    `json:"sessionNumber"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Date          string `json:"date,omitempty"`
}

// Week groups exactly two sessions under one theme.
type Week struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Sessions []Session `json:"sessions"`
}

// DayLabel is the session label used for transcript lookup and display.
func (s Session) DayLabel() string {
	return fmt.Sprintf("Clase %d", s.SessionNumber)
}

// ClassNumber maps a week/session pair onto the 1..12 ordinal used for the
// static material and quiz documents: (week-1)*2 + session.
func ClassNumber(weekID, sessionNumber int) int {
	return (weekID-1)*2 + sessionNumber
}

// Curriculum is the static 6-week program. Content is authored in Spanish,
// matching the portal it serves.
var Curriculum = []Week{
	{
		ID:    1,
		Title: "Fundamentos de IA y Productividad",
		Sessions: []Session{
			{
				ID:            "1-1",
				SessionNumber: 1,
				Title:         "Introducción a la IA Corporativa y ChatGPT",
				Description:   "Visión general de la IA en AFRI y dominio de herramientas LLM (ChatGPT/Claude) para productividad inmediata.",
				Date:          "Por definir",
			},
			{
				ID:            "1-2",
				SessionNumber: 2,
				Title:         "Ingeniería de Prompts Profesional",
				Description:   "Técnicas avanzadas de comunicación con IAs para obtener resultados precisos y útiles en el trabajo diario.",
				Date:          "Por definir",
			},
		},
	},
	{
		ID:    2,
		Title: "Herramientas y Desarrollo Asistido",
		Sessions: []Session{
			{
				ID:            "2-1",
				SessionNumber: 1,
				Title:         "IA para Desarrolladores (Copilot & Cursor)",
				Description:   "Uso de asistentes de código para acelerar el desarrollo y reducir errores en la programación.",
				Date:          "Por definir",
			},
			{
				ID:            "2-2",
				SessionNumber: 2,
				Title:         "Automatización Básica de Tareas",
				Description:   "Creación de scripts simples y flujos de trabajo para eliminar tareas repetitivas administrativas.",
				Date:          "Por definir",
			},
		},
	},
	{
		ID:    3,
		Title: "Infraestructura Cloud e IA",
		Sessions: []Session{
			{
				ID:            "3-1",
				SessionNumber: 1,
				Title:         "IA en Azure Databricks y Cloud",
				Description:   "Exploración de capacidades de IA en la nube de Azure y cómo aprovecharlas en proyectos de datos.",
				Date:          "Por definir",
			},
			{
				ID:            "3-2",
				SessionNumber: 2,
				Title:         "Soluciones Enterprise (Oracle/AWS)",
				Description:   "Panorama de soluciones de IA en ecosistemas Oracle y AWS para grandes volúmenes de datos.",
				Date:          "Por definir",
			},
		},
	},
	{
		ID:    4,
		Title: "Automatización Avanzada",
		Sessions: []Session{
			{
				ID:            "4-1",
				SessionNumber: 1,
				Title:         "Workflows con N8N",
				Description:   "Orquestación de procesos complejos conectando múltiples aplicaciones sin necesidad de código extenso.",
				Date:          "Por definir",
			},
			{
				ID:            "4-2",
				SessionNumber: 2,
				Title:         "Agentes IA y LangChain",
				Description:   "Introducción a la creación de agentes autónomos capaces de razonar y ejecutar acciones.",
				Date:          "Por definir",
			},
		},
	},
	{
		ID:    5,
		Title: "Estrategia y Negocio",
		Sessions: []Session{
			{
				ID:            "5-1",
				SessionNumber: 1,
				Title:         "IA en Sector Financiero y Ventas",
				Description:   "Casos de uso reales aplicados a finanzas y estrategias para comercializar soluciones de IA.",
				Date:          "Por definir",
			},
			{
				ID:            "5-2",
				SessionNumber: 2,
				Title:         "Detección de Oportunidades",
				Description:   "Metodologías para identificar dónde la IA aporta mayor valor dentro de la organización o clientes.",
				Date:          "Por definir",
			},
		},
	},
	{
		ID:    6,
		Title: "Proyecto Final",
		Sessions: []Session{
			{
				ID:            "6-1",
				SessionNumber: 1,
				Title:         "Diseño de Propuestas (Design Thinking)",
				Description:   "Estructuración y diseño de la solución final aplicando metodologías ágiles.",
				Date:          "Por definir",
			},
			{
				ID:            "6-2",
				SessionNumber: 2,
				Title:         "Presentación Final y Feedback",
				Description:   "Defensa del proyecto ante el comité, feedback y próximos pasos para la implementación.",
				Date:          "Por definir",
			},
		},
	},
}

// WeekByID returns the curriculum week, or nil for an unknown id.
func WeekByID(id int) *Week {
	for i := range Curriculum {
		if Curriculum[i].ID == id {
			return &Curriculum[i]
		}
	}
	return nil
}

// SessionByNumber returns the session within a week, or nil.
func (w *Week) SessionByNumber(n int) *Session {
	for i := range w.Sessions {
		if w.Sessions[i].SessionNumber == n {
			return &w.Sessions[i]
		}
	}
	return nil
}
