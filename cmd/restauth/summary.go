package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/restauth/httpclient"
	"github.com/kbukum/restauth/util"
	"github.com/kbukum/restauth/version"
)

// summarySection is one titled group of "key: value" lines.
type summarySection struct {
	title string
	items []summaryItem
}

type summaryItem struct {
	key   string
	value string
}

// configSummary renders the resolved configuration as a tree.
// Secrets are masked and unset values are shown as "-".
type configSummary struct {
	sections []summarySection
}

func (s *configSummary) section(title string) *summarySection {
	s.sections = append(s.sections, summarySection{title: title})
	return &s.sections[len(s.sections)-1]
}

func (sec *summarySection) add(key string, value any) {
	v := fmt.Sprint(value)
	sec.items = append(sec.items, summaryItem{key: key, value: util.Coalesce(v, "-")})
}

func newConfigSummary(cfg *AppConfig) *configSummary {
	s := &configSummary{}

	svc := s.section("Service")
	svc.add("name", cfg.Name)
	svc.add("environment", cfg.Environment)
	svc.add("version", util.Coalesce(cfg.Version, version.Version))
	svc.add("log level", cfg.Logging.Level)
	svc.add("log format", cfg.Logging.Format)

	j := cfg.Jira
	jira := s.section("Jira")
	jira.add("site", j.Site)
	jira.add("context path", j.ContextPath)
	jira.add("auth", authMode(&j))
	jira.add("username", j.Username)
	jira.add("password", util.MaskSecret(j.Password, 0))
	if j.UseToken {
		jira.add("issuer", j.Issuer)
		jira.add("shared secret", util.MaskSecret(j.SharedSecret, 0))
	}
	masked := make([]string, 0, len(j.AdditionalCookies))
	for _, c := range j.AdditionalCookies {
		masked = append(masked, util.MaskCookie(c))
	}
	jira.add("additional cookies", strings.Join(masked, "; "))

	conn := s.section("Connection")
	proxy := j.ProxyAddress
	if proxy != "" && j.ProxyPort > 0 {
		proxy = fmt.Sprintf("%s (port %d)", proxy, j.ProxyPort)
	}
	conn.add("proxy", proxy)
	conn.add("force TLS", j.UseSSL)
	conn.add("verify", j.SSLVerifyMode)
	conn.add("ca file", j.CAFile)
	conn.add("client cert", j.UseClientCert)
	conn.add("read timeout", j.ReadTimeout)

	obs := s.section("Observability")
	if cfg.Observability.Enabled() {
		obs.add("otlp endpoint", cfg.Observability.OTLPEndpoint)
		obs.add("sample rate", cfg.Observability.SampleRate)
		obs.add("metric interval", cfg.Observability.MetricInterval)
	} else {
		obs.add("otlp endpoint", "")
	}
	return s
}

// authMode names the strategies a client built from c would apply.
func authMode(c *httpclient.Config) string {
	var modes []string
	switch {
	case c.UseCookies && c.HasCredentials():
		modes = append(modes, "session")
	case c.HasCredentials():
		modes = append(modes, "basic")
	case c.UseCookies:
		modes = append(modes, "cookies")
	}
	if c.UseToken {
		modes = append(modes, "jwt")
	}
	if len(modes) == 0 {
		return "anonymous"
	}
	return strings.Join(modes, "+")
}

func (s *configSummary) write(w io.Writer) {
	for i, sec := range s.sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, sec.title)
		for j, item := range sec.items {
			prefix := "├──"
			if j == len(sec.items)-1 {
				prefix = "└──"
			}
			fmt.Fprintf(w, "   %s %s: %s\n", prefix, item.key, item.value)
		}
	}
}
