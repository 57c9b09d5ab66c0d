package api

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	Title          string
	Examples       []string
	HistoryEnabled bool
	DigestsEnabled bool
}

var exampleQuestions = []string{
	"What's the hottest product today?",
	"Show me trending AI tools",
	"What do people think about Maillayer?",
	"Find email marketing products",
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplates.ExecuteTemplate(w, "index.html", indexPage{
		Title:          "Product Hunt AI Agent",
		Examples:       exampleQuestions,
		HistoryEnabled: s.exchanges != nil,
		DigestsEnabled: s.digestsReady(),
	})
	if err != nil {
		s.logger.Error("render index", zap.Error(err))
	}
}
