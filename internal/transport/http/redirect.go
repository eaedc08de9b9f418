package httptransport

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"
)

// deepLinkScheme is the custom URL scheme the mobile programmer app
// registers.
const deepLinkScheme = "rfaccess://program/"

// mobileTemplate immediately hands the token off to the installed app.
// The meta refresh is the fallback for browsers that block scripted
// scheme navigation.
var mobileTemplate = template.Must(template.New("mobile").Parse(`<!DOCTYPE html>
<html>
<head>
<title>RF Access Programming</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="1;url={{.DeepLink}}">
</head>
<body>
<p>Opening the RF Access app&hellip;</p>
<p>If nothing happens, <a href="{{.DeepLink}}">tap here</a> or install the RF Access app first.</p>
<script>window.location = {{.DeepLink}};</script>
</body>
</html>
`))

var desktopTemplate = template.Must(template.New("desktop").Parse(`<!DOCTYPE html>
<html>
<head><title>RF Access Programming</title></head>
<body>
<h1>RF Access Programming</h1>
<p>This link must be opened on the phone that has the RF Access app installed.</p>
<p>Open the notification on your phone, or scan this page's address from your phone's browser.</p>
</body>
</html>
`))

// Redirect serves the browser-facing program link. It never touches the
// distribution state; the app consumes the token via the access API.
type Redirect struct {
	logger *slog.Logger
}

func NewRedirect(logger *slog.Logger) *Redirect {
	return &Redirect{logger: logger}
}

// HandleProgramPage handles GET /program/{token}. Mobile browsers get a
// page that bounces into the app via the custom scheme; everything else
// gets instructions. The token is not validated here so the page stays
// cacheable and leaks nothing about token state.
func (h *Redirect) HandleProgramPage(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ua := useragent.New(r.UserAgent())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if ua.Mobile() {
		data := struct{ DeepLink string }{DeepLink: deepLinkScheme + token}
		if err := mobileTemplate.Execute(w, data); err != nil && h.logger != nil {
			h.logger.ErrorContext(r.Context(), "failed to render mobile redirect page", "error", err)
		}
		return
	}

	if err := desktopTemplate.Execute(w, nil); err != nil && h.logger != nil {
		h.logger.ErrorContext(r.Context(), "failed to render desktop page", "error", err)
	}
}
