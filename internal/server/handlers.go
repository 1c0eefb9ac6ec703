package server

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	strataerrors "github.com/conneroisu/strata/internal/errors"
	"github.com/conneroisu/strata/internal/version"
)

// reloadScript reconnects after the server restarts and reloads the page on
// every message.
const reloadScript = `<script>
(function () {
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onmessage = function () { location.reload(); };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>`

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>strata preview</title></head>
<body>
{{.Overlay}}
<h1>Views</h1>
<table>
<thead><tr><th>View</th><th>Layouts</th><th>Sections</th></tr></thead>
<tbody>
{{- range .Views}}
<tr><td><a href="/view/{{.Name}}">{{.Name}}</a></td><td>{{range $i, $l := .Chain}}{{if $i}} &rarr; {{end}}{{$l}}{{end}}</td><td>{{range $i, $s := .Sections}}{{if $i}}, {{end}}{{$s}}{{end}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, map[string]any{
		"Views":   s.renderer.Catalog().Infos(),
		"Overlay": template.HTML(s.errors.Overlay()), //nolint:gosec // escaped by the collector
	})
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to render index")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeHTML(w, http.StatusOK, buf.String())
}

// handleView renders a view with its model file. The page is produced in
// memory first, so a failing render still gets a proper error status.
func (s *PreviewServer) handleView(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	model, err := s.models.ForView(name)
	if err != nil {
		ve := strataerrors.NewValidationError(strataerrors.ErrCodeModelInvalid, "loading model").WithView(name)
		ve.Cause = err
		s.writeError(w, ve)
		return
	}

	html, err := s.renderer.RenderString(r.Context(), name, model)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHTML(w, http.StatusOK, html)
}

func (s *PreviewServer) handleViews(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.renderer.Catalog().Infos())
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "healthy",
		"version": version.Get().Short(),
		"views":   len(s.renderer.Catalog().Names()),
	}
	if s.hub != nil {
		status["clients"] = s.hub.Clients()
	}
	if s.errors.HasErrors() {
		status["status"] = "degraded"
		status["errors"] = s.errors.Len()
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *PreviewServer) writeError(w http.ResponseWriter, err error) {
	ve := strataerrors.Classify(err)

	status := http.StatusInternalServerError
	if ve.Code == strataerrors.ErrCodeViewNotFound {
		status = http.StatusNotFound
	}

	page := strataerrors.NewCollector()
	page.Add(ve)
	s.writeHTML(w, status, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`+
		template.HTMLEscapeString(ve.Code)+`</title></head><body>`+page.Overlay()+`</body></html>`)
}

func (s *PreviewServer) writeHTML(w http.ResponseWriter, status int, html string) {
	if s.hub != nil {
		html = injectReloadScript(html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Debug(context.Background(), "Failed to write response", "error", err.Error())
	}
}

func (s *PreviewServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug(context.Background(), "Failed to write response", "error", err.Error())
	}
}

// injectReloadScript places the live-reload script before the last </body>,
// or at the end of pages without one.
func injectReloadScript(html string) string {
	const tag = "</body>"
	for i := len(html) - len(tag); i >= 0; i-- {
		if strings.EqualFold(html[i:i+len(tag)], tag) {
			return html[:i] + reloadScript + html[i:]
		}
	}
	return html + reloadScript
}
