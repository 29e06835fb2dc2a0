// Package airgap verifies that the host has no network reachability before
// installation proceeds, and can bring live interfaces down (and later back
// up) under explicit operator authorization.
package airgap

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/system"
)

// Probe is one independent reachability test. Multiple probes run so that a
// single blocked protocol cannot produce a false "airgapped" verdict.
type Probe struct {
	Name string
	Run  func(ctx context.Context) error
}

// Evidence describes one probe that succeeded.
type Evidence struct {
	Probe  string
	Detail string
}

const (
	probeTimeout = 5 * time.Second
	dnsProbeHost = "example.com"
	httpProbeURL = "https://1.1.1.1"
)

// DefaultProbes returns the standard probe set: ICMP echo to two well-known
// addresses, a DNS lookup, and an HTTPS HEAD request.
func DefaultProbes(sys system.System) []Probe {
	return []Probe{
		icmpProbe(sys, messages.ProbeNameICMPPrimary, "1.1.1.1"),
		icmpProbe(sys, messages.ProbeNameICMPSecondary, "8.8.8.8"),
		{
			Name: messages.ProbeNameDNS,
			Run: func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, probeTimeout)
				defer cancel()
				resolver := &net.Resolver{}
				_, err := resolver.LookupHost(ctx, dnsProbeHost)
				return err
			},
		},
		{
			Name: messages.ProbeNameHTTPS,
			Run: func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, probeTimeout)
				defer cancel()
				req, err := http.NewRequestWithContext(ctx, http.MethodHead, httpProbeURL, nil)
				if err != nil {
					return err
				}
				resp, err := http.DefaultClient.Do(req)
				if err != nil {
					return err
				}
				return resp.Body.Close()
			},
		},
	}
}

func icmpProbe(sys system.System, name, addr string) Probe {
	return Probe{
		Name: name,
		Run: func(context.Context) error {
			_, err := sys.Run("ping", "-c", "1", "-W", "2", addr)
			return err
		},
	}
}

// CheckConnectivity runs every probe and reports whether any succeeded,
// together with the evidence for each success.
func CheckConnectivity(ctx context.Context, probes []Probe) (bool, []Evidence) {
	var evidence []Evidence
	for _, p := range probes {
		if err := p.Run(ctx); err == nil {
			evidence = append(evidence, Evidence{Probe: p.Name, Detail: "probe succeeded"})
		}
	}
	return len(evidence) > 0, evidence
}
