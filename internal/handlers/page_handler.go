package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/models"
)

//go:embed pages/*.html
var pageFS embed.FS

// SupportConfigLoader loads the support contact shown on the dashboard
type SupportConfigLoader interface {
	GetSupportConfig(ctx context.Context) (*models.SupportConfig, error)
}

type PageHandler struct {
	logger         arbor.ILogger
	templates      *template.Template
	statusProvider StatusProvider
	supportConfig  SupportConfigLoader
	markdown       goldmark.Markdown
	mailsAPIURL    string
}

func NewPageHandler(statusProvider StatusProvider, supportConfig SupportConfigLoader, mailsAPIURL string, logger arbor.ILogger) *PageHandler {
	return &PageHandler{
		logger:         logger,
		templates:      template.Must(template.ParseFS(pageFS, "pages/*.html")),
		statusProvider: statusProvider,
		supportConfig:  supportConfig,
		// Raw HTML in the fallback message is escaped (no html.WithUnsafe)
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		),
		mailsAPIURL: mailsAPIURL,
	}
}

// ServeDashboard renders the admin dashboard at GET /
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, "GET") {
		return
	}

	data := map[string]interface{}{
		"Version":     common.GetVersion(),
		"MailsAPIURL": h.mailsAPIURL,
	}
	if h.statusProvider != nil {
		data["Status"] = h.statusProvider.GetStatus()
	}

	if h.supportConfig != nil {
		config, err := h.supportConfig.GetSupportConfig(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to load support configuration for dashboard")
		} else {
			data["Support"] = config
			data["FallbackHTML"] = h.renderMarkdown(config.FallbackMessage)
		}
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		h.logger.Error().
			Err(err).
			Str("template", "dashboard.html").
			Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *PageHandler) renderMarkdown(source string) template.HTML {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(source), &buf); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to render fallback message")
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}
