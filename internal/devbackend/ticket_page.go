package devbackend

const ticketPage = `<!DOCTYPE html>
<html lang="hr">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Loto Listić - {{.ID}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #fcfcf9; color: #13343b; padding: 20px; }
.container { max-width: 600px; margin: 0 auto; background: #fffffd; border-radius: 12px; padding: 30px; }
.numbers { display: flex; flex-wrap: wrap; gap: 10px; }
.number { width: 45px; height: 45px; display: flex; align-items: center; justify-content: center; border-radius: 50%; color: white; background: #33808d; font-weight: 600; }
.number.match { background: #28a745; }
.pending { text-align: center; padding: 15px; color: #e68161; }
.ticket-id { font-family: monospace; font-size: 12px; color: #777; text-align: center; margin-top: 20px; }
</style>
</head>
<body>
<div class="container">
  <h1>Loto 6/45 - Pregled Listića</h1>
  <div class="section">
    <div class="label">Broj osobne / putovnice</div>
    <div class="value">{{.OwnerID}}</div>
  </div>
  <div class="section">
    <div class="label">Vaši odabrani brojevi</div>
    <div class="numbers">
      {{- range .Numbers}}
      <div class="number ticket{{if matched $.Matches .}} match{{end}}">{{.}}</div>
      {{- end}}
    </div>
  </div>
  {{- if .Drawn}}
  <div class="section">
    <div class="label">Izvučeni brojevi</div>
    <div class="numbers">
      {{- range .Drawn}}
      <div class="number drawn">{{.}}</div>
      {{- end}}
    </div>
  </div>
  <div class="match-info">
    <h2>Pogođeno brojeva: {{.MatchCount}}/6</h2>
    {{- if .Matches}}
    <p>Pogođeni brojevi: {{range $i, $n := .Matches}}{{if $i}}, {{end}}{{$n}}{{end}}</p>
    {{- else}}
    <p>Nažalost, niste pogodili niti jedan broj.</p>
    {{- end}}
  </div>
  {{- else}}
  <div class="pending">Izvlačenje još nije obavljeno</div>
  {{- end}}
  <div class="ticket-id">ID listića: {{.ID}}</div>
</div>
</body>
</html>
`
