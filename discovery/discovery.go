// Package discovery finds other full nodes on the local network over mDNS.
package discovery

import (
	"context"
	"errors"
	"log"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
)

const (
	SERVICE = "_powledger._tcp"
	DOMAIN  = "local."
)

// Announce advertises this node until the returned server is shut down.
func Announce(instance string, port int) (*zeroconf.Server, error) {
	return zeroconf.Register(instance, SERVICE, DOMAIN, port, nil, nil)
}

// EntryAddress picks the host:port other nodes should register for entry. IPv4 wins over IPv6.
func EntryAddress(entry *zeroconf.ServiceEntry) (string, error) {
	if entry == nil || entry.Port <= 0 {
		return "", errors.New("entry has no port")
	}
	var ip net.IP
	switch {
	case len(entry.AddrIPv4) > 0:
		ip = entry.AddrIPv4[0]
	case len(entry.AddrIPv6) > 0:
		ip = entry.AddrIPv6[0]
	default:
		return "", errors.New("entry has no address")
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port)), nil
}

// Browse hands every discovered node except self to register until ctx is done.
func Browse(ctx context.Context, self string, register func(address string) error) error {
	resolver, err := zeroconf.NewResolver()
	if err != nil {
		return err
	}
	entries := make(chan *zeroconf.ServiceEntry)
	go consume(ctx, entries, self, register)
	if err := resolver.Browse(ctx, SERVICE, DOMAIN, entries); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func consume(ctx context.Context, entries <-chan *zeroconf.ServiceEntry, self string, register func(string) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if entry.Instance == self {
				continue
			}
			addr, err := EntryAddress(entry)
			if err != nil {
				log.Println("skipping discovered node:", err)
				continue
			}
			if err := register(addr); err != nil {
				log.Println("failed to register discovered node:", err)
			}
		}
	}
}
