package demoserver

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/raysh454/vertex/internal/logging"
)

var panelTemplate = template.Must(template.New("panel").Parse(panelHTML))

type panelData struct {
	VertexURL string
	Pages     []PageState
}

// handlePanel renders one card per fixture. Scans go straight from the
// browser to the Vertex API; the panel keeps the report id of the last scan
// of each version and asks Vertex to compare them once both exist.
func (s *DemoServer) handlePanel(w http.ResponseWriter, r *http.Request) {
	data := panelData{
		VertexURL: strings.TrimRight(s.cfg.VertexURL, "/"),
		Pages:     s.States(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := panelTemplate.Execute(w, data); err != nil {
		s.logger.Error("render panel failed", logging.Field{Key: "error", Value: err.Error()})
	}
}

const panelHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Vertex fixtures</title>
<style>
body { font: 15px/1.5 system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #1d1d1f; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .5rem; border-bottom: 1px solid #ddd; vertical-align: top; }
.tag { display: inline-block; padding: 0 .4rem; margin: 0 .2rem .2rem 0; border-radius: 3px; background: #e8eefc; font-size: 12px; }
.broken { color: #a30000; } .fixed { color: #0a6b2d; }
.result { font-size: 13px; }
button { font: inherit; }
</style>
</head>
<body>
<header><h1>Vertex fixtures</h1></header>
<main>
<p>Version 1 of every page trips the listed issue types and version 2 fixes them.
Scan a page, switch it to the other version, scan again, and the two reports are compared.
Scans are sent to <code>{{.VertexURL}}</code>.</p>
<p>
<button type="button" data-all="break-all">Serve all broken</button>
<button type="button" data-all="fix-all">Serve all fixed</button>
</p>
<table>
<thead><tr><th scope="col">Page</th><th scope="col">Issue types</th><th scope="col">Serving</th><th scope="col">Scans</th></tr></thead>
<tbody>
{{range .Pages}}
<tr data-path="{{.Path}}" data-version="{{.Version}}">
<td><a href="{{.Path}}">{{.Path}}</a><br>{{.Description}}</td>
<td>{{range .Categories}}<span class="tag">{{.}}</span>{{end}}</td>
<td>
<span class="state {{if .Fixed}}fixed{{else}}broken{{end}}">v{{.Version}} {{if .Fixed}}fixed{{else}}broken{{end}}</span><br>
{{range .Versions}}<button type="button" data-set="{{.}}">v{{.}}</button> {{end}}
</td>
<td>
<button type="button" data-scan>Scan</button>
<div class="result"></div>
</td>
</tr>
{{end}}
</tbody>
</table>
</main>
<script>
const vertex = {{.VertexURL}};
const scans = {};

async function call(url, body) {
  const res = await fetch(url, {
    method: body === undefined ? 'GET' : 'POST',
    headers: {'Content-Type': 'application/json'},
    body: body === undefined ? undefined : JSON.stringify(body),
  });
  const data = await res.json();
  if (!res.ok) throw new Error(data.error || res.statusText);
  return data;
}

function render(row) {
  const path = row.dataset.path;
  const out = row.querySelector('.result');
  const byVersion = scans[path] || {};
  out.textContent = '';
  for (const v of Object.keys(byVersion).sort()) {
    const r = byVersion[v];
    const line = document.createElement('div');
    const link = document.createElement('a');
    link.href = vertex + '/reports/' + r.id + '/export';
    link.textContent = 'v' + v + ': ' + r.score.toFixed(0) + ' (' + r.tier + ', ' + r.issues.length + ' issues)';
    line.appendChild(link);
    out.appendChild(line);
  }
  if (byVersion[1] && byVersion[2]) {
    call(vertex + '/reports/' + byVersion[1].id + '/compare/' + byVersion[2].id).then(d => {
      const line = document.createElement('div');
      line.textContent = 'v1 to v2: ' + (d.score_delta >= 0 ? '+' : '') + d.score_delta.toFixed(0) +
        ' points, ' + d.resolved.length + ' resolved, ' + d.new.length + ' new';
      out.appendChild(line);
    }).catch(e => { out.append(' compare failed: ' + e.message); });
  }
}

document.querySelectorAll('[data-scan]').forEach(btn => btn.addEventListener('click', async () => {
  const row = btn.closest('tr');
  const path = row.dataset.path;
  btn.disabled = true;
  try {
    const rep = await call(vertex + '/scans', {url: location.origin + path, mode: 'static'});
    scans[path] = scans[path] || {};
    scans[path][row.dataset.version] = rep;
    render(row);
  } catch (e) {
    row.querySelector('.result').textContent = 'scan failed: ' + e.message;
  } finally {
    btn.disabled = false;
  }
}));

document.querySelectorAll('[data-set]').forEach(btn => btn.addEventListener('click', async () => {
  const row = btn.closest('tr');
  const st = await call('/demo/version', {path: row.dataset.path, version: Number(btn.dataset.set)});
  row.dataset.version = st.version;
  const label = row.querySelector('.state');
  label.textContent = 'v' + st.version + (st.fixed ? ' fixed' : ' broken');
  label.className = 'state ' + (st.fixed ? 'fixed' : 'broken');
}));

document.querySelectorAll('[data-all]').forEach(btn => btn.addEventListener('click', async () => {
  await call('/demo/' + btn.dataset.all, {});
  location.reload();
}));
</script>
</body>
</html>`
