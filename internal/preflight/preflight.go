// Package preflight answers "is this target worth probing" for batch
// scans. It resolves hostnames against public resolvers directly, so a
// poisoned or empty local resolver does not silently drop targets, and it
// normalizes hosts to their registrable domain for grouping.
package preflight

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

var recordTypes = []uint16{
	dns.TypeA,
	dns.TypeAAAA,
	dns.TypeCNAME,
}

var resolvers = []string{
	"8.8.8.8:53",        // Google
	"1.1.1.1:53",        // Cloudflare
	"9.9.9.9:53",        // Quad9
	"208.67.222.222:53", // OpenDNS
}

const queryTimeout = 2 * time.Second

// Resolve returns the addresses and CNAME targets a host resolves to. An
// IP literal resolves to itself. An empty slice means no resolver returned
// an answer for any record type.
func Resolve(host string) []string {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}
	}
	var records []string
	for _, qtype := range recordTypes {
		records = append(records, query(host, qtype)...)
	}
	return records
}

// query asks each resolver in turn for one record type, stopping at the
// first that answers.
func query(host string, qtype uint16) []string {
	var records []string
	for _, resolver := range resolvers {
		c := new(dns.Client)
		c.Timeout = queryTimeout

		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(host), qtype)
		m.RecursionDesired = true

		r, _, err := c.Exchange(m, resolver)
		if err != nil || r == nil || len(r.Answer) == 0 {
			continue
		}
		for _, ans := range r.Answer {
			switch rr := ans.(type) {
			case *dns.A:
				records = append(records, rr.A.String())
			case *dns.AAAA:
				records = append(records, rr.AAAA.String())
			case *dns.CNAME:
				records = append(records, strings.ToLower(rr.Target))
			}
		}
		if len(records) > 0 {
			break
		}
	}
	return records
}

// RegistrableDomain collapses a hostname to its registrable domain
// (www.blog.example.co.uk -> example.co.uk), falling back to the input
// when the public suffix list has no answer, as for IP literals and
// internal names.
func RegistrableDomain(host string) string {
	domain, err := publicsuffix.Domain(host)
	if err != nil || domain == "" {
		return host
	}
	return domain
}
