package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const serviceType = "_inkboard._tcp"

// advertise announces the board service on the local network.
func advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"inkboard"})
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}
	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	return srv, nil
}

// Browse reports every board service found on the local network.
func Browse(found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4, e.Port))
		}
	}()
	err := mdns.Lookup(serviceType, entries)
	close(entries)
	<-done
	return err
}
