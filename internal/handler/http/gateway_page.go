package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

const pageLayout = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Webpay (simulado)</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f4f6;margin:0;padding:2rem}
main{max-width:32rem;margin:auto;background:#fff;border-radius:8px;padding:2rem;box-shadow:0 2px 8px rgba(0,0,0,.08)}
table{width:100%;border-collapse:collapse;margin:1rem 0}
td{padding:.35rem 0;border-bottom:1px solid #eee}
td.num{text-align:right}
.actions{display:flex;gap:1rem}
button{flex:1;padding:.75rem;border:0;border-radius:6px;font-size:1rem;cursor:pointer}
.approve{background:#0a7d33;color:#fff}
.reject{background:#b3261e;color:#fff}
.note{color:#666;font-size:.85rem}
</style>
</head>
<body><main>{{template "content" .}}</main></body>
</html>`

var (
	gatewayTmpl = mustPage(`{{define "content"}}
<h1>Pago simulado</h1>
<p>Orden de compra <strong>{{.BuyOrder}}</strong></p>
<table>
{{range .Items}}<tr><td>{{.Quantity}} x {{.Name}}</td><td class="num">{{.Total}}</td></tr>
{{end}}{{if .Discount}}<tr><td>Descuento</td><td class="num">-{{.Discount}}</td></tr>
{{end}}<tr><td><strong>Total</strong></td><td class="num"><strong>{{.Total}}</strong></td></tr>
</table>
<form method="post" action="/mock-webpay" class="actions">
<input type="hidden" name="token_ws" value="{{.Token}}">
<button class="approve" name="decision" value="approve">Aprobar pago</button>
<button class="reject" name="decision" value="reject">Rechazar pago</button>
</form>
<p class="note">Pasarela de desarrollo. No se realizan cobros reales.</p>
{{end}}`)

	decisionTmpl = mustPage(`{{define "content"}}
<h1>{{if .Approved}}Pago aprobado{{else}}Pago rechazado{{end}}</h1>
<p>La decisión quedó registrada. Confirma la transacción con el token:</p>
<p><code>{{.Token}}</code></p>
{{end}}`)

	errorTmpl = mustPage(`{{define "content"}}
<h1>No se pudo continuar</h1>
<p>{{.Message}}</p>
{{end}}`)
)

type gatewayLine struct {
	Name     string
	Quantity int
	Total    string
}

type gatewayView struct {
	Token    string
	BuyOrder string
	Items    []gatewayLine
	Discount string
	Total    string
}

type decisionView struct {
	Token    string
	Approved bool
}

type errorView struct {
	Message string
}

func newGatewayView(token string, tx *domain.Transaction) gatewayView {
	v := gatewayView{
		Token:    token,
		BuyOrder: tx.BuyOrder,
		Total:    domain.FormatCLP(tx.Total),
	}
	if tx.Discount > 0 {
		v.Discount = domain.FormatCLP(tx.Discount)
	}
	for _, it := range tx.Items {
		v.Items = append(v.Items, gatewayLine{Name: it.Name, Quantity: it.Quantity, Total: domain.FormatCLP(it.LineTotal())})
	}
	return v
}

func mustPage(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(pageLayout))
	return template.Must(t.Parse(content))
}

// renderPage executes t into a buffer before writing any header.
func renderPage(w http.ResponseWriter, status int, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		http.Error(w, apperrors.GenericMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
