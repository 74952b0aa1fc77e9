package net

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
	"github.com/sirupsen/logrus"
)

const ServiceType = "_localboard._tcp"

// Board is a live view found on the local network.
type Board struct {
	Instance string
	Addr     string
}

// Advertise announces a live view listening on port. An empty instance name
// uses the hostname.
func Advertise(port int, instance string) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, []string{"LocalBoard", "path=" + LivePath})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logrus.WithFields(logrus.Fields{"instance": instance, "port": port}).Info("Advertising live view")
	return server, nil
}

// Browse queries the network once and calls found for every board that
// answers. It returns when the query times out or ctx is done.
func Browse(ctx context.Context, found func(Board)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(Board{Instance: e.Name, Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port)})
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mDNS lookup failed: %w", err)
	}
	return nil
}
