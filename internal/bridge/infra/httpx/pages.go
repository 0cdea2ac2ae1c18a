package httpx

import (
	"html/template"
	"net/http"
)

// Minimal shopper-facing result pages, the landing targets of the
// post-callback redirects.
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<div style="text-align: center; margin: 50px;">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<a href="/">Return to shop</a>
</div>
</body>
</html>
`))

type pageData struct {
	Title   string
	Message string
}

func (h *Handler) SuccessPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, pageData{Title: "Payment Successful", Message: "Your payment was successful!"})
}

func (h *Handler) FailedPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, pageData{Title: "Payment Failed", Message: "Unfortunately, your payment failed."})
}

func renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTmpl.Execute(w, data)
}
