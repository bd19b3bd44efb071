// Package discovery advertises the board on the local network so clients
// can find it without typing an address.
package discovery

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

const serviceType = "_whiteboard._tcp"

type Advertiser struct {
	server *mdns.Server
}

// Advertise announces the service on the LAN until Shutdown.
func Advertise(name string, port int) (*Advertiser, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		serviceType,
		"", // domain, defaults to .local
		"", // hostname, defaults to the OS hostname
		port,
		nil, // IPs auto-detected
		[]string{name},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Info().Str("module", "discovery").Str("service", serviceType).Int("port", port).Msg("advertising on LAN")
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() {
	if a.server != nil {
		_ = a.server.Shutdown()
	}
}
