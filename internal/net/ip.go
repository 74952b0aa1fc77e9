package net

import (
	"net"

	"github.com/sirupsen/logrus"
)

// OutgoingIP finds the preferred local IP address for the host to share.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; pick an interface address instead.
		return firstIPv4().String()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 returns the first IPv4 address of an interface that is up and not
// a loopback, or 127.0.0.1.
func firstIPv4() net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		logrus.WithError(err).Warn("Could not list network interfaces")
		return net.IPv4(127, 0, 0, 1)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	logrus.Warn("No suitable local IP found, share link may not work")
	return net.IPv4(127, 0, 0, 1)
}
