package server

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/kballard/go-shellquote"

	"github.com/abnormalend/jitsi-infra/internal/jitsi"
)

const DNSScriptPath = "/opt/jitsi/update-dns.py"

//go:embed userdata.sh.tmpl
var userDataTmpl string

//go:embed update-dns.py
var updateDNSScript string

var userData = template.Must(template.New("userdata").Funcs(template.FuncMap{
	"quote": func(s string) string { return shellquote.Join(s) },
}).Parse(userDataTmpl))

// RenderUserData builds the first boot shell script for the server.
func RenderUserData(cfg *jitsi.Config) (string, error) {
	vals := struct {
		FQDN          string
		Email         string
		UpdateDNS     bool
		DNSScriptPath string
		DNSScript     string
	}{
		FQDN:          cfg.FQDN(),
		Email:         cfg.Email,
		UpdateDNS:     cfg.UpdatesOwnDNS(),
		DNSScriptPath: DNSScriptPath,
		DNSScript:     updateDNSScript,
	}
	builder := &strings.Builder{}
	if err := userData.Execute(builder, vals); err != nil {
		return "", err
	}
	return builder.String(), nil
}
